// Package parserpool provides a pool of gnparser instances that reduce
// scientific names to canonical forms. Reference tables and taxonomy paths
// often carry authorships ("Homo sapiens Linnaeus, 1758"), canonical forms
// let such names meet their bare spelling in the name index.
// This is a pure package - parsing is computation, not I/O.
package parserpool

import (
	"fmt"
	"runtime"

	"github.com/gnames/gnlib/ent/nomcode"
	"github.com/gnames/gnparser"
	"github.com/gnames/gnparser/ent/parsed"
)

// Pool provides a pool of gnparser instances for concurrent parsing.
// It maintains separate pools for botanical and zoological nomenclatural codes.
type Pool interface {
	// Parse parses a scientific name string using the specified nomenclatural code.
	// This method is safe for concurrent use.
	Parse(nameString string, code nomcode.Code) (parsed.Parsed, error)

	// Canonical returns the simple canonical form of a name parsed with
	// the botanical code, or the name itself if it cannot be parsed.
	Canonical(nameString string) string

	// Close shuts down the parser pools and releases resources.
	// After calling Close, the pool should not be used.
	Close()
}

// PoolImpl implements the Pool interface using gnparser.NewPool.
type PoolImpl struct {
	botanicalCh  chan gnparser.GNparser
	zoologicalCh chan gnparser.GNparser
	poolSize     int
}

// NewPool creates a new parser pool with the specified number of workers.
// If jobsNum is 0, it defaults to runtime.NumCPU().
func NewPool(jobsNum int) Pool {
	poolSize := jobsNum
	if poolSize <= 0 {
		poolSize = runtime.NumCPU()
	}

	// Botanical code avoids treating "Aus (Bus)" as a subgenus.
	botanicalCfg := gnparser.NewConfig(
		gnparser.OptCode(nomcode.Botanical),
	)
	botanicalCh := gnparser.NewPool(botanicalCfg, poolSize)

	zoologicalCfg := gnparser.NewConfig(
		gnparser.OptCode(nomcode.Zoological),
	)
	zoologicalCh := gnparser.NewPool(zoologicalCfg, poolSize)

	return &PoolImpl{
		botanicalCh:  botanicalCh,
		zoologicalCh: zoologicalCh,
		poolSize:     poolSize,
	}
}

// Parse parses a scientific name string using the specified nomenclatural code.
func (p *PoolImpl) Parse(nameString string, code nomcode.Code) (parsed.Parsed, error) {
	var ch chan gnparser.GNparser
	switch code {
	case nomcode.Botanical:
		ch = p.botanicalCh
	case nomcode.Zoological:
		ch = p.zoologicalCh
	default:
		return parsed.Parsed{}, fmt.Errorf("unsupported nomenclatural code: %v", code)
	}

	// blocks if all parsers are busy
	parser := <-ch
	result := parser.ParseName(nameString)
	ch <- parser

	return result, nil
}

// Canonical returns the simple canonical form of the name.
func (p *PoolImpl) Canonical(nameString string) string {
	res, err := p.Parse(nameString, nomcode.Botanical)
	if err != nil || !res.Parsed || res.Canonical == nil {
		return nameString
	}
	return res.Canonical.Simple
}

// Close shuts down both parser pools and releases resources.
func (p *PoolImpl) Close() {
	if p.botanicalCh != nil {
		close(p.botanicalCh)
		for range p.botanicalCh {
		}
	}

	if p.zoologicalCh != nil {
		close(p.zoologicalCh)
		for range p.zoologicalCh {
		}
	}
}
