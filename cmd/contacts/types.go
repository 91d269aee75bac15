package main

import "github.com/jward/contacts"

// CLIResult is the top-level envelope for every command's output.
type CLIResult struct {
	Command    string `json:"command" yaml:"command"`
	Results    any    `json:"results" yaml:"results"`
	TotalCount *int   `json:"total_count,omitempty" yaml:"total_count,omitempty"`
	Error      string `json:"error,omitempty" yaml:"error,omitempty"`
}

// CLIPerson is a person with the birth date spelled out.
type CLIPerson struct {
	ID       int64  `json:"id" yaml:"id"`
	Name     string `json:"name" yaml:"name"`
	Birth    string `json:"birth" yaml:"birth"`
	EpochDay int64  `json:"epoch_day" yaml:"epoch_day"`
}

func personToCLI(rec contacts.Record) CLIPerson {
	return CLIPerson{
		ID:       rec.ID,
		Name:     rec.Name,
		Birth:    rec.Birth.String(),
		EpochDay: int64(rec.Birth),
	}
}
