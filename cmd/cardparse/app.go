package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/urfave/cli"

	"medvault/internal/config"
	"medvault/internal/domain"
	"medvault/internal/ocr"
	"medvault/internal/parser/insurance"
	"medvault/internal/port"
)

const (
	formatJSON  = "json"
	formatTable = "table"
)

// engineFactory is swapped in tests.
var engineFactory = func(cfg config.OCRConfig) (port.OCREngine, error) {
	return ocr.NewEngine(cfg)
}

func newApp(stdin io.Reader, stdout io.Writer) *cli.App {
	formatFlag := cli.StringFlag{
		Name:  "format, f",
		Value: formatJSON,
		Usage: "output format: json or table",
	}

	app := cli.NewApp()
	app.Name = "cardparse"
	app.Usage = "Extract insurance card fields from OCR text or card images"
	app.Writer = stdout
	app.Commands = []cli.Command{
		{
			Name:      "parse",
			Usage:     "Parse OCR text from files, or stdin when no files are given",
			ArgsUsage: "[files...]",
			Flags:     []cli.Flag{formatFlag},
			Action: func(c *cli.Context) error {
				format := c.String("format")
				if c.NArg() == 0 {
					raw, err := io.ReadAll(stdin)
					if err != nil {
						return fmt.Errorf("reading stdin: %w", err)
					}
					return writeCard(stdout, format, "", insurance.Parse(string(raw)))
				}
				for _, path := range c.Args() {
					raw, err := os.ReadFile(path)
					if err != nil {
						return fmt.Errorf("reading %s: %w", path, err)
					}
					if err := writeCard(stdout, format, path, insurance.Parse(string(raw))); err != nil {
						return err
					}
				}
				return nil
			},
		},
		{
			Name:  "ocr",
			Usage: "Run the OCR engine over card images, then parse the text",
			Flags: []cli.Flag{
				formatFlag,
				cli.StringFlag{Name: "front", Usage: "front image (required)"},
				cli.StringFlag{Name: "back", Usage: "back image"},
				cli.StringFlag{Name: "lang", Value: "eng", Usage: "comma separated tesseract languages"},
				cli.BoolFlag{Name: "text", Usage: "print the recognised text before the card"},
			},
			Action: func(c *cli.Context) error {
				if c.String("front") == "" {
					return cli.NewExitError("--front is required", 2)
				}
				engine, err := engineFactory(config.OCRConfig{
					Engine:    ocr.EngineTesseract,
					Languages: strings.Split(c.String("lang"), ","),
				})
				if err != nil {
					return err
				}

				text, err := recognize(context.Background(), engine, c.String("front"), c.String("back"))
				if err != nil {
					return err
				}
				if c.Bool("text") {
					fmt.Fprintln(stdout, text)
					fmt.Fprintln(stdout)
				}
				return writeCard(stdout, c.String("format"), c.String("front"), insurance.Parse(text))
			},
		},
	}
	return app
}

func recognize(ctx context.Context, engine port.OCREngine, paths ...string) (string, error) {
	var parts []string
	for _, path := range paths {
		if path == "" {
			continue
		}
		img, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("reading %s: %w", path, err)
		}
		text, err := engine.Recognize(ctx, img)
		if err != nil {
			return "", fmt.Errorf("ocr %s: %w", path, err)
		}
		parts = append(parts, text)
	}
	return strings.Join(parts, "\n"), nil
}

func writeCard(w io.Writer, format, label string, card domain.ParsedInsuranceCard) error {
	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(card)
	case formatTable:
		if label != "" {
			fmt.Fprintf(w, "== %s\n", label)
		}
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		rows := [][2]string{
			{"Provider", card.Provider.Name},
			{"Confidence", string(card.Provider.Confidence)},
			{"Member ID", card.MemberID},
			{"Group Number", card.GroupNumber},
			{"Plan Name", card.PlanName},
			{"Subscriber", card.SubscriberName},
			{"Phone Numbers", strings.Join(card.PhoneNumbers, "; ")},
			{"RxBIN", card.RxBIN},
			{"RxPCN", card.RxPCN},
			{"RxGroup", card.RxGroup},
		}
		for _, row := range rows {
			fmt.Fprintf(tw, "%s\t%s\n", row[0], row[1])
		}
		return tw.Flush()
	default:
		return cli.NewExitError(fmt.Sprintf("unknown format %q", format), 2)
	}
}
