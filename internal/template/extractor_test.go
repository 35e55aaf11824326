package template

import (
	"context"
	"errors"
	"strings"
	"testing"
)

type scriptedOracle struct {
	results []Extraction
	errs    []error
	calls   int
	known   [][]Variable
}

func (s *scriptedOracle) ExtractVariables(_ context.Context, _ string, known []Variable) (Extraction, error) {
	idx := s.calls
	s.calls++
	copied := make([]Variable, len(known))
	copy(copied, known)
	s.known = append(s.known, copied)
	var err error
	if idx < len(s.errs) {
		err = s.errs[idx]
	}
	if idx < len(s.results) {
		return s.results[idx], err
	}
	return Extraction{}, err
}

func TestExtractFirstOccurrenceWins(t *testing.T) {
	oracle := &scriptedOracle{
		results: []Extraction{
			{
				Variables: []Variable{
					{Key: "Client Name", Description: "first"},
					{Key: "effective_date"},
				},
				Metadata: Metadata{DocType: "nda", Jurisdiction: "US"},
			},
			{
				Variables: []Variable{
					{Key: "client_name", Description: "second"},
					{Key: "Governing Law"},
				},
				Metadata: Metadata{DocType: "lease"},
			},
		},
	}
	extractor := NewExtractor(oracle, ExtractorConfig{ChunkSize: 10, ChunkOverlap: 2})

	result, err := extractor.Extract(context.Background(), strings.Repeat("x", 18))
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if oracle.calls != 2 {
		t.Fatalf("expected 2 oracle calls, got %d", oracle.calls)
	}
	if len(result.Variables) != 3 {
		t.Fatalf("expected 3 variables, got %d", len(result.Variables))
	}
	if result.Variables[0].Key != "client_name" || result.Variables[0].Description != "first" {
		t.Fatalf("first occurrence should win, got %+v", result.Variables[0])
	}
	if result.Variables[2].Key != "governing_law" {
		t.Fatalf("expected normalised key, got %q", result.Variables[2].Key)
	}
	if result.Metadata.DocType != "nda" || result.Metadata.Jurisdiction != "US" {
		t.Fatalf("metadata should come from the first window, got %+v", result.Metadata)
	}
}

func TestExtractPassesAccumulatedKnown(t *testing.T) {
	oracle := &scriptedOracle{
		results: []Extraction{
			{Variables: []Variable{{Key: "party_a"}}},
			{Variables: []Variable{{Key: "party_b"}}},
			{},
		},
	}
	extractor := NewExtractor(oracle, ExtractorConfig{ChunkSize: 10, ChunkOverlap: 0})

	if _, err := extractor.Extract(context.Background(), strings.Repeat("x", 25)); err != nil {
		t.Fatalf("extract: %v", err)
	}
	if len(oracle.known) != 3 {
		t.Fatalf("expected 3 calls, got %d", len(oracle.known))
	}
	if len(oracle.known[0]) != 0 {
		t.Fatalf("first window should receive no known variables, got %d", len(oracle.known[0]))
	}
	if len(oracle.known[1]) != 1 || oracle.known[1][0].Key != "party_a" {
		t.Fatalf("second window should see first window's variables, got %+v", oracle.known[1])
	}
	if len(oracle.known[2]) != 2 {
		t.Fatalf("third window should see both variables, got %d", len(oracle.known[2]))
	}
}

func TestExtractWindowFailurePreservesAccumulator(t *testing.T) {
	oracle := &scriptedOracle{
		results: []Extraction{
			{Variables: []Variable{{Key: "landlord"}}, Metadata: Metadata{DocType: "lease"}},
			{},
			{Variables: []Variable{{Key: "tenant"}}},
		},
		errs: []error{nil, errors.New("rate limited"), nil},
	}
	extractor := NewExtractor(oracle, ExtractorConfig{ChunkSize: 10, ChunkOverlap: 0})

	result, err := extractor.Extract(context.Background(), strings.Repeat("x", 25))
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if len(result.Variables) != 2 {
		t.Fatalf("expected 2 variables despite failed window, got %d", len(result.Variables))
	}
	if result.Variables[0].Key != "landlord" || result.Variables[1].Key != "tenant" {
		t.Fatalf("unexpected variables: %+v", result.Variables)
	}
}

func TestExtractFirstWindowFailureDefaultsMetadata(t *testing.T) {
	oracle := &scriptedOracle{
		results: []Extraction{{}, {Variables: []Variable{{Key: "amount"}}}},
		errs:    []error{errors.New("boom"), nil},
	}
	extractor := NewExtractor(oracle, ExtractorConfig{ChunkSize: 10, ChunkOverlap: 0})

	result, err := extractor.Extract(context.Background(), strings.Repeat("x", 15))
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if result.Metadata.DocType != "unknown" {
		t.Fatalf("expected unknown doc type, got %q", result.Metadata.DocType)
	}
	if len(result.Variables) != 1 {
		t.Fatalf("expected 1 variable, got %d", len(result.Variables))
	}
}

func TestExtractFillsLabelAndDataTypeDefaults(t *testing.T) {
	oracle := &scriptedOracle{
		results: []Extraction{
			{Variables: []Variable{{Key: "client_name"}}},
		},
	}
	extractor := NewExtractor(oracle, ExtractorConfig{})

	result, err := extractor.Extract(context.Background(), "short text")
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	got := result.Variables[0]
	if got.Label != "Client Name" {
		t.Fatalf("expected derived label, got %q", got.Label)
	}
	if got.DataType != "text" {
		t.Fatalf("expected text data type, got %q", got.DataType)
	}
}
