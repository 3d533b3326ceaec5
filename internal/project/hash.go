package project

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"

	"tensa/internal/codegen"
)

// Digest - фиксированный 256 битный хеш (совместим с source.File.Hash)
type Digest [32]byte

func (d Digest) String() string { return hex.EncodeToString(d[:]) }

// Combine hashes content followed by every dep: H(content || dep1 || dep2 ...).
// The order of deps is part of the result.
func Combine(content Digest, deps ...Digest) Digest {
	h := sha256.New()
	_, _ = h.Write(content[:])
	for _, d := range deps {
		_, _ = h.Write(d[:])
	}
	var out Digest
	copy(out[:], h.Sum(nil))
	return out
}

// TargetDigest fingerprints every field of t that influences generated code.
func TargetDigest(t codegen.Target) Digest {
	h := sha256.New()
	write := func(s string) {
		_, _ = h.Write([]byte(s))
		_, _ = h.Write([]byte{0})
	}
	for _, s := range []string{
		t.Package, t.PackageAlias(), t.BackendPackage, t.Device, t.DeviceVar,
		t.Zeros, t.Ones, t.Full, t.Arange, t.ArangeStep, t.Operators,
	} {
		write(s)
	}
	toks := make([]string, 0, len(t.Methods))
	for tok := range t.Methods {
		toks = append(toks, tok)
	}
	sort.Strings(toks)
	for _, tok := range toks {
		write(tok)
		write(t.Methods[tok])
	}
	var out Digest
	copy(out[:], h.Sum(nil))
	return out
}
