package catalog

import (
	"errors"
	"fmt"
)

// Package is a membership offering. Price is in whole currency units.
type Package struct {
	ID          string
	Name        string
	Description string
	Price       int
}

// Catalog is a read-only, ordered list of packages.
type Catalog struct {
	packages []Package
	byID     map[string]int
}

// New builds a catalog, keeping the given order.
func New(packages ...Package) (*Catalog, error) {
	if len(packages) == 0 {
		return nil, errors.New("catalog is empty")
	}

	c := &Catalog{
		packages: make([]Package, 0, len(packages)),
		byID:     make(map[string]int, len(packages)),
	}
	for _, p := range packages {
		if p.ID == "" {
			return nil, fmt.Errorf("package %q: empty id", p.Name)
		}
		if p.Price <= 0 {
			return nil, fmt.Errorf("package %q: price must be positive", p.ID)
		}
		if _, ok := c.byID[p.ID]; ok {
			return nil, fmt.Errorf("package %q: duplicate id", p.ID)
		}
		c.byID[p.ID] = len(c.packages)
		c.packages = append(c.packages, p)
	}

	return c, nil
}

// Default returns the gym's built-in offerings.
func Default() *Catalog {
	c, err := New(
		Package{ID: "basic", Name: "Basic Monthly", Description: "Gym access + group classes", Price: 1000},
		Package{ID: "premium", Name: "Premium Annual", Description: "All access + personal trainer", Price: 10000},
		Package{ID: "trial", Name: "Day Pass", Description: "One-day access", Price: 100},
	)
	if err != nil {
		panic(err)
	}
	return c
}

// List returns the packages in catalog order.
func (c *Catalog) List() []Package {
	out := make([]Package, len(c.packages))
	copy(out, c.packages)
	return out
}

// Find looks up a package by id.
func (c *Catalog) Find(id string) (Package, bool) {
	i, ok := c.byID[id]
	if !ok {
		return Package{}, false
	}
	return c.packages[i], true
}
