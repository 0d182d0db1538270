package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"chit-fund-analyzer/domain"
)

const analyzeInput = `{
	"total_installments": 14,
	"current_installment_number": 5,
	"full_chit_value": 700000,
	"chit_frequency_per_year": 2,
	"previous_installments": [42000, 40000, 40000, 43000],
	"bid_amount": 100000
}`

func inputCommand(stdin string) *cobra.Command {
	cmd := &cobra.Command{}
	cmd.Flags().String("input", "", "")
	cmd.SetIn(strings.NewReader(stdin))
	return cmd
}

func TestReadBatch(t *testing.T) {
	tests := []struct {
		name    string
		stdin   string
		count   int
		isArray bool
		wantErr bool
	}{
		{"single object", analyzeInput, 1, false, false},
		{"array", "[" + analyzeInput + "," + analyzeInput + "]", 2, true, false},
		{"empty", "   ", 0, false, true},
		{"empty array", "[]", 0, true, true},
		{"malformed", "{nope", 0, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inputs, isArray, err := readBatch[domain.ChitFundInput](inputCommand(tt.stdin))
			if (err != nil) != tt.wantErr {
				t.Fatalf("unexpected error state: %v", err)
			}
			if tt.wantErr {
				return
			}
			if len(inputs) != tt.count || isArray != tt.isArray {
				t.Errorf("expected %d inputs (array=%v), got %d (array=%v)", tt.count, tt.isArray, len(inputs), isArray)
			}
		})
	}
}

func TestReadOne_RejectsArray(t *testing.T) {
	if _, err := readOne[domain.ChitFundInput](inputCommand("[" + analyzeInput + "]")); err == nil {
		t.Errorf("expected an error for an array")
	}
}

func TestAnalyzeCommand_Batch(t *testing.T) {

	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("storage:\n  driver: memory\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	invalid := strings.Replace(analyzeInput, `"bid_amount": 100000`, `"bid_amount": 700000`, 1)
	var out bytes.Buffer
	rootCmd.SetIn(strings.NewReader("[" + analyzeInput + "," + invalid + "]"))
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"analyze", "--config", configPath})

	err := rootCmd.Execute()
	if !errors.Is(err, errBatchFailed) {
		t.Fatalf("expected errBatchFailed, got %v", err)
	}

	var outputs []analyzeOutput
	if err := json.Unmarshal(out.Bytes(), &outputs); err != nil {
		t.Fatalf("decode output: %v\n%s", err, out.String())
	}
	if len(outputs) != 2 {
		t.Fatalf("expected 2 outputs, got %d", len(outputs))
	}
	if outputs[0].Result == nil || outputs[0].Error != "" {
		t.Errorf("first input should succeed, got %+v", outputs[0])
	}
	if outputs[1].Result != nil || !strings.Contains(outputs[1].Error, "bid_amount") {
		t.Errorf("second input should fail on bid_amount, got %+v", outputs[1])
	}
}
