package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medvault/internal/config"
	"medvault/internal/domain"
	"medvault/internal/port"
)

const sampleCard = "Aetna\nMember ID: W123456789\nGroup No: 0012345\nRxBIN: 610502"

type stubEngine map[string]string

func (s stubEngine) Recognize(_ context.Context, img []byte) (string, error) {
	text, ok := s[string(img)]
	if !ok {
		return "", errors.New("unreadable image")
	}
	return text, nil
}

func TestParse_Stdin(t *testing.T) {
	var out bytes.Buffer
	app := newApp(strings.NewReader(sampleCard), &out)

	require.NoError(t, app.Run([]string{"cardparse", "parse"}))

	var card domain.ParsedInsuranceCard
	require.NoError(t, json.Unmarshal(out.Bytes(), &card))
	assert.Equal(t, "Aetna", card.Provider.Name)
	assert.Equal(t, "W123456789", card.MemberID)
	assert.Equal(t, "610502", card.RxBIN)
}

func TestParse_FilesAsTable(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "card.txt")
	require.NoError(t, os.WriteFile(path, []byte(sampleCard), 0o600))

	var out bytes.Buffer
	app := newApp(strings.NewReader(""), &out)

	require.NoError(t, app.Run([]string{"cardparse", "parse", "--format", "table", path}))

	assert.Contains(t, out.String(), "== "+path)
	assert.Contains(t, out.String(), "W123456789")
	assert.Contains(t, out.String(), "Member ID")
}

func TestParse_MissingFile(t *testing.T) {
	app := newApp(strings.NewReader(""), &bytes.Buffer{})

	err := app.Run([]string{"cardparse", "parse", filepath.Join(t.TempDir(), "absent.txt")})
	assert.ErrorContains(t, err, "absent.txt")
}

func TestOCR_FrontAndBack(t *testing.T) {
	dir := t.TempDir()
	front := filepath.Join(dir, "front.png")
	back := filepath.Join(dir, "back.png")
	require.NoError(t, os.WriteFile(front, []byte("front-bytes"), 0o600))
	require.NoError(t, os.WriteFile(back, []byte("back-bytes"), 0o600))

	orig := engineFactory
	t.Cleanup(func() { engineFactory = orig })
	var gotLangs []string
	engineFactory = func(cfg config.OCRConfig) (port.OCREngine, error) {
		gotLangs = cfg.Languages
		return stubEngine{
			"front-bytes": "Aetna\nMember ID: W123456789",
			"back-bytes":  "RxBIN: 610502",
		}, nil
	}

	var out bytes.Buffer
	app := newApp(strings.NewReader(""), &out)
	require.NoError(t, app.Run([]string{"cardparse", "ocr", "--front", front, "--back", back, "--lang", "eng,spa"}))

	assert.Equal(t, []string{"eng", "spa"}, gotLangs)
	var card domain.ParsedInsuranceCard
	require.NoError(t, json.Unmarshal(out.Bytes(), &card))
	assert.Equal(t, "W123456789", card.MemberID)
	assert.Equal(t, "610502", card.RxBIN)
}

func TestWriteCard_UnknownFormat(t *testing.T) {
	err := writeCard(&bytes.Buffer{}, "yaml", "", domain.NewParsedInsuranceCard())
	assert.ErrorContains(t, err, "unknown format")
}
