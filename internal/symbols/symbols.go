// Package symbols reads the exported symbol table of a native artifact
// without loading it, so an export can be checked even when the artifact
// cannot be loaded into the current process.
package symbols

import (
	"debug/buildinfo"
	"debug/elf"
	"debug/macho"
	"debug/pe"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
)

// ErrUnknownFormat is returned for files that are not ELF, Mach-O or PE.
var ErrUnknownFormat = errors.New("unknown object file format")

// MissingSymbolError reports that an artifact does not export a symbol
// under its exact name. NearMatch holds an export that differs only in
// case, if there is one.
type MissingSymbolError struct {
	Path      string
	Symbol    string
	NearMatch string
}

func (e *MissingSymbolError) Error() string {
	if e.NearMatch != "" {
		return fmt.Sprintf("symbol %q not exported by %s (found %q; export names are case-sensitive)", e.Symbol, e.Path, e.NearMatch)
	}
	return fmt.Sprintf("symbol %q not exported by %s", e.Symbol, e.Path)
}

// Exports returns the sorted, de-duplicated names of the functions and
// data the artifact at path exports.
func Exports(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	names, err := readExports(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	sort.Strings(names)
	out := names[:0]
	for i, n := range names {
		if i > 0 && names[i-1] == n {
			continue
		}
		out = append(out, n)
	}
	return out, nil
}

// Require checks that the artifact at path exports symbol exactly.
func Require(path, symbol string) error {
	names, err := Exports(path)
	if err != nil {
		return err
	}

	missing := &MissingSymbolError{Path: path, Symbol: symbol}
	for _, n := range names {
		if n == symbol {
			return nil
		}
		if missing.NearMatch == "" && strings.EqualFold(n, symbol) {
			missing.NearMatch = n
		}
	}
	return missing
}

// IsGoArtifact reports whether the file at path was linked by the Go
// toolchain. Such a library starts its own Go runtime and cannot be
// loaded into a process that already runs one.
func IsGoArtifact(path string) bool {
	_, err := buildinfo.ReadFile(path)
	return err == nil
}

func readExports(r io.ReaderAt) ([]string, error) {
	if f, err := elf.NewFile(r); err == nil {
		defer f.Close()
		return elfExports(f)
	}
	if f, err := macho.NewFile(r); err == nil {
		defer f.Close()
		return machoExports(f), nil
	}
	if f, err := pe.NewFile(r); err == nil {
		defer f.Close()
		return peExports(f)
	}
	return nil, ErrUnknownFormat
}

func elfExports(f *elf.File) ([]string, error) {
	syms, err := f.DynamicSymbols()
	if err != nil {
		if errors.Is(err, elf.ErrNoSymbols) {
			return nil, nil
		}
		return nil, err
	}

	var names []string
	for _, s := range syms {
		// Undefined entries are imports.
		if s.Section == elf.SHN_UNDEF {
			continue
		}
		bind := elf.ST_BIND(s.Info)
		if bind != elf.STB_GLOBAL && bind != elf.STB_WEAK {
			continue
		}
		names = append(names, s.Name)
	}
	return names, nil
}

func machoExports(f *macho.File) []string {
	if f.Symtab == nil {
		return nil
	}

	const (
		nExt  = 0x01
		nType = 0x0e
		nSect = 0x0e
	)

	var names []string
	for _, s := range f.Symtab.Syms {
		if s.Type&nExt == 0 || s.Type&nType != nSect {
			continue
		}
		names = append(names, strings.TrimPrefix(s.Name, "_"))
	}
	return names
}

func peExports(f *pe.File) ([]string, error) {
	var dir pe.DataDirectory
	switch oh := f.OptionalHeader.(type) {
	case *pe.OptionalHeader64:
		if len(oh.DataDirectory) <= pe.IMAGE_DIRECTORY_ENTRY_EXPORT {
			return nil, nil
		}
		dir = oh.DataDirectory[pe.IMAGE_DIRECTORY_ENTRY_EXPORT]
	case *pe.OptionalHeader32:
		if len(oh.DataDirectory) <= pe.IMAGE_DIRECTORY_ENTRY_EXPORT {
			return nil, nil
		}
		dir = oh.DataDirectory[pe.IMAGE_DIRECTORY_ENTRY_EXPORT]
	default:
		return nil, nil
	}
	if dir.Size == 0 {
		return nil, nil
	}

	var section *pe.Section
	for _, s := range f.Sections {
		if dir.VirtualAddress >= s.VirtualAddress && dir.VirtualAddress < s.VirtualAddress+s.VirtualSize {
			section = s
			break
		}
	}
	if section == nil {
		return nil, fmt.Errorf("export directory outside any section")
	}

	data, err := section.Data()
	if err != nil {
		return nil, err
	}
	rva := func(addr uint32) ([]byte, bool) {
		off := addr - section.VirtualAddress
		if addr < section.VirtualAddress || int(off) >= len(data) {
			return nil, false
		}
		return data[off:], true
	}

	hdr, ok := rva(dir.VirtualAddress)
	if !ok || len(hdr) < 40 {
		return nil, fmt.Errorf("truncated export directory")
	}
	numNames := le32(hdr[24:])
	namesRVA := le32(hdr[32:])

	table, ok := rva(namesRVA)
	if !ok || uint32(len(table)) < numNames*4 {
		return nil, fmt.Errorf("truncated export name table")
	}

	names := make([]string, 0, numNames)
	for i := uint32(0); i < numNames; i++ {
		b, ok := rva(le32(table[i*4:]))
		if !ok {
			return nil, fmt.Errorf("export name %d out of range", i)
		}
		if n := strings.IndexByte(string(b), 0); n >= 0 {
			b = b[:n]
		}
		names = append(names, string(b))
	}
	return names, nil
}

func le32(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}
