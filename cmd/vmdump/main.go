package main

import (
	"context"
	"fmt"
	"os"

	"hackvm/pkg/translator"
)

const testSource = `function Main.main 1
push constant 10
push constant 20
lt
if-goto LESS
push constant 0
return
label LESS
push constant 1
return
`

// vmdump prints the token stream and the generated assembly of a .vm file,
// or of a built-in sample when no argument is given.
func main() {
	units := []translator.Unit{{Name: "Main", Source: testSource}}
	if len(os.Args) > 1 {
		var err error
		units, _, err = translator.LoadUnits(os.Args[1])
		if err != nil {
			fmt.Fprintln(os.Stderr, "load error:", err)
			os.Exit(1)
		}
	}

	for _, u := range units {
		fmt.Printf("Source (%s):\n%s\n", u.Name, u.Source)

		tokens := translator.Lex(u.Source)
		fmt.Printf("Tokens (%d)\n", len(tokens))
		for _, tok := range tokens {
			if tok.Type == translator.EOL {
				continue
			}
			fmt.Println(" ", tok)
		}
		fmt.Println()
	}

	out, err := translator.Translate(context.Background(), units, translator.Options{})
	if err != nil {
		fmt.Fprintln(os.Stderr, "translate error:", err)
		os.Exit(1)
	}

	fmt.Println("Generated Assembly")
	fmt.Print(out)
}
