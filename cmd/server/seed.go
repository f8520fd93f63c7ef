package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/gogogo1024/accesskit/internal/directory"
	"github.com/gogogo1024/accesskit/internal/resource"
)

// seedFile describes the principals and resource hierarchy loaded at
// startup when running against the in-memory backends.
type seedFile struct {
	Principals struct {
		Users  []seedUser  `yaml:"users"`
		Groups []seedGroup `yaml:"groups"`
	} `yaml:"principals"`
	Resources []seedResource `yaml:"resources"`
}

type seedUser struct {
	ID    string `yaml:"id"`
	Name  string `yaml:"name"`
	Login string `yaml:"login"`
}

type seedGroup struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

type seedResource struct {
	ID     string `yaml:"id"`
	Name   string `yaml:"name"`
	Parent string `yaml:"parent"`
}

func loadSeed(path string) (*seedFile, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var seed seedFile
	if err := yaml.Unmarshal(b, &seed); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &seed, nil
}

// apply populates the static directory and the in-memory resource tree.
// Resources must be listed parents-first.
func (s *seedFile) apply(static *directory.Static, tree *resource.Tree) error {
	for _, u := range s.Principals.Users {
		static.AddUser(u.ID, u.Name, u.Login)
	}
	for _, g := range s.Principals.Groups {
		static.AddGroup(g.ID, g.Name, g.Description)
	}
	for _, r := range s.Resources {
		if err := tree.Add(r.ID, r.Name, r.Parent); err != nil {
			return err
		}
	}
	return nil
}
