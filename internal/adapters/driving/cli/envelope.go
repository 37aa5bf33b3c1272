package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/chunkflow/internal/chunkers/email"
	"github.com/custodia-labs/chunkflow/internal/core/domain"
)

var envelopeCmd = &cobra.Command{
	Use:   "envelope",
	Short: "Convert documents to and from EML envelopes",
	Long: `Convert documents into EML envelopes that carry their tagged text in a
header, or decode an envelope back into chunks.`,
}

var envelopeEncodeCmd = &cobra.Command{
	Use:   "encode <file>",
	Short: "Write a document as an EML envelope",
	Args:  cobra.ExactArgs(1),
	RunE:  runEnvelopeEncode,
}

var envelopeDecodeCmd = &cobra.Command{
	Use:   "decode <file.eml>",
	Short: "Decode an EML envelope into raw chunks",
	Args:  cobra.ExactArgs(1),
	RunE:  runEnvelopeDecode,
}

func init() {
	envelopeEncodeCmd.Flags().StringP("output", "o", "", "Output path (default <name>.eml, '-' for stdout)")
	envelopeDecodeCmd.Flags().IntP("budget", "b", 0, "Maximum tokens per chunk (default from config)")
	envelopeCmd.AddCommand(envelopeEncodeCmd)
	envelopeCmd.AddCommand(envelopeDecodeCmd)
	rootCmd.AddCommand(envelopeCmd)
}

func runEnvelopeEncode(cmd *cobra.Command, args []string) error {
	if envelopeEncoder == nil {
		return errors.New("envelope encoder not configured")
	}

	path := args[0]
	content, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	name, eml, err := envelopeEncoder.Encode(cmd.Context(), &domain.ChunkInput{
		Filename: filepath.Base(path),
		Content:  content,
		ToPage:   domain.DefaultToPage,
		Language: appConfig.Chunking.Language,
		Progress: progressSink(),
		Config:   appConfig.ParserConfig(),
	})
	if err != nil {
		return err
	}

	out, _ := cmd.Flags().GetString("output")
	switch out {
	case "-":
		_, err = cmd.OutOrStdout().Write(eml)
		return err
	case "":
		out = filepath.Join(filepath.Dir(path), name)
	}

	if err := os.WriteFile(out, eml, 0o644); err != nil {
		return err
	}
	cmd.Printf("Wrote %s (%d bytes)\n", out, len(eml))
	return nil
}

func runEnvelopeDecode(cmd *cobra.Command, args []string) error {
	path := args[0]
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	m, err := email.Parse(data)
	if err != nil {
		return err
	}

	cfg := appConfig.ParserConfig()
	if budget, _ := cmd.Flags().GetInt("budget"); budget > 0 {
		cfg.ChunkTokenBudget = budget
	}

	chunks, err := email.Decode(m, filepath.Base(path), cfg)
	if err != nil {
		return err
	}

	env := m.Envelope
	log.Info("From: %s, To: %s, Subject: %s, tagged: %t", env.From, env.To, env.Subject, env.HasTaggedText())

	out := make([]map[string]any, 0, len(chunks))
	for _, c := range chunks {
		out = append(out, c.Serializable())
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode chunks: %w", err)
	}
	return nil
}
