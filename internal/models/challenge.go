package models

import "strings"

type ChallengeInfo struct {
	ChallengeID  string `json:"challenge_id"`
	TestCaseName string `json:"test_case_name"`
	Description  string `json:"description,omitempty"`
}

type InputDocument struct {
	Filename string `json:"filename"`
	Title    string `json:"title"`
}

type Persona struct {
	Role string `json:"role"`
}

type JobToBeDone struct {
	Task string `json:"task"`
}

// ChallengeInput is the per-collection input descriptor.
type ChallengeInput struct {
	ChallengeInfo ChallengeInfo   `json:"challenge_info"`
	Documents     []InputDocument `json:"documents"`
	Persona       Persona         `json:"persona"`
	JobToBeDone   JobToBeDone     `json:"job_to_be_done"`
}

// Filenames lists the referenced document file names in input order.
func (c *ChallengeInput) Filenames() []string {
	names := make([]string, 0, len(c.Documents))
	for _, d := range c.Documents {
		names = append(names, d.Filename)
	}
	return names
}

// CollectionResult is one entry of a batch run summary.
type CollectionResult struct {
	Collection string `json:"collection"`
	Success    bool   `json:"success"`
	OutputPath string `json:"output_path,omitempty"`
	Error      string `json:"error,omitempty"`
}

// BatchResult summarises an analyze-all run.
type BatchResult struct {
	TotalCollections int                `json:"total_collections"`
	Successful       int                `json:"successful"`
	Failed           int                `json:"failed"`
	Results          []CollectionResult `json:"results"`
}

func lower(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
