package cpu

import (
	"archive/zip"
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// machineState is the JSON part of a snapshot: everything but the memories.
type machineState struct {
	A        uint16 `json:"a"`
	D        int16  `json:"d"`
	PC       uint16 `json:"pc"`
	Halted   bool   `json:"halted"`
	Steps    uint64 `json:"steps"`
	ROMWords int    `json:"rom_words"`
	SP       uint16 `json:"sp"`
	LCL      uint16 `json:"lcl"`
	ARG      uint16 `json:"arg"`
	THIS     uint16 `json:"this"`
	THAT     uint16 `json:"that"`
}

// HibernateToBytes packs the machine into a ZIP archive holding
// cpu_state.json, rom.bin and ram.bin (little-endian words).
func (c *CPU) HibernateToBytes() ([]byte, error) {
	buf := new(bytes.Buffer)
	zw := zip.NewWriter(buf)

	// The segment pointers are duplicated from RAM for people reading the JSON.
	state := machineState{
		A:        c.A,
		D:        int16(c.D),
		PC:       c.PC,
		Halted:   c.Halted,
		Steps:    c.Steps,
		ROMWords: len(c.ROM),
		SP:       c.RAM[SP],
		LCL:      c.RAM[LCL],
		ARG:      c.RAM[ARG],
		THIS:     c.RAM[THIS],
		THAT:     c.RAM[THAT],
	}
	jsonData, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal cpu_state: %w", err)
	}
	if err := writeZipEntry(zw, "cpu_state.json", jsonData); err != nil {
		return nil, err
	}
	if err := writeZipEntry(zw, "rom.bin", uint16SliceToLE(c.ROM)); err != nil {
		return nil, err
	}
	if err := writeZipEntry(zw, "ram.bin", uint16SliceToLE(c.RAM[:])); err != nil {
		return nil, err
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("close zip: %w", err)
	}
	return buf.Bytes(), nil
}

// RestoreFromBytes replaces the machine state with a snapshot produced by
// HibernateToBytes.
func (c *CPU) RestoreFromBytes(data []byte) error {
	r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return fmt.Errorf("open zip: %w", err)
	}

	fileMap := make(map[string]*zip.File, len(r.File))
	for _, f := range r.File {
		fileMap[f.Name] = f
	}

	jsonData, err := readZipEntry(fileMap, "cpu_state.json")
	if err != nil {
		return err
	}
	var state machineState
	if err := json.Unmarshal(jsonData, &state); err != nil {
		return fmt.Errorf("unmarshal cpu_state: %w", err)
	}
	if state.ROMWords < 0 || state.ROMWords > ROMSize {
		return fmt.Errorf("snapshot ROM of %d words does not fit", state.ROMWords)
	}

	romData, err := readZipEntry(fileMap, "rom.bin")
	if err != nil {
		return err
	}
	ramData, err := readZipEntry(fileMap, "ram.bin")
	if err != nil {
		return err
	}

	c.ROM = make([]uint16, state.ROMWords)
	leToUint16Slice(romData, c.ROM)
	leToUint16Slice(ramData, c.RAM[:])
	c.A = state.A
	c.D = uint16(state.D)
	c.PC = state.PC
	c.Halted = state.Halted
	c.Steps = state.Steps
	return nil
}

// HibernateToFile writes the snapshot archive to path.
func (c *CPU) HibernateToFile(path string) error {
	data, err := c.HibernateToBytes()
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// RestoreFromFile reads a snapshot archive from path into the machine.
func (c *CPU) RestoreFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return c.RestoreFromBytes(data)
}

func writeZipEntry(zw *zip.Writer, name string, data []byte) error {
	w, err := zw.Create(name)
	if err != nil {
		return fmt.Errorf("create zip entry %q: %w", name, err)
	}
	_, err = w.Write(data)
	return err
}

func readZipEntry(fileMap map[string]*zip.File, name string) ([]byte, error) {
	f, ok := fileMap[name]
	if !ok {
		return nil, fmt.Errorf("zip entry %q not found", name)
	}
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("open zip entry %q: %w", name, err)
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

func uint16SliceToLE(src []uint16) []byte {
	out := make([]byte, len(src)*2)
	for i, v := range src {
		binary.LittleEndian.PutUint16(out[i*2:], v)
	}
	return out
}

func leToUint16Slice(src []byte, dst []uint16) {
	for i := range dst {
		if i*2+1 < len(src) {
			dst[i] = binary.LittleEndian.Uint16(src[i*2:])
		}
	}
}
