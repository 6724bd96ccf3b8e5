package main

import (
	"archive/zip"
	"bytes"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"coverletter-backend/internal/render"
)

// renderdemo renders a sample letter into a local template so template
// changes can be checked without hitting the LLM.
func main() {
	templatePath := flag.String("template", "./assets/template.docx", "path to the DOCX template")
	outPath := flag.String("out", "./out/sample_letter.docx", "output path for the rendered DOCX")
	indent := flag.Int("indent", 0, "recipient indent override in twips (0 = derive from template)")
	flag.Parse()

	template, err := os.ReadFile(*templatePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "read template: %v\n", err)
		os.Exit(1)
	}

	docxBytes, err := render.LetterDOCX(template, sampleLetter(), render.Options{
		RecipientIndentTwips: *indent,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "render failed: %v\n", err)
		os.Exit(1)
	}

	if err := os.MkdirAll(filepath.Dir(*outPath), 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "write failed: %v\n", err)
		os.Exit(1)
	}
	if err := os.WriteFile(*outPath, docxBytes, 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "write failed: %v\n", err)
		os.Exit(1)
	}

	if err := validateRenderedDocx(docxBytes); err != nil {
		fmt.Fprintf(os.Stderr, "render validation failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("OK: wrote %s\n", *outPath)
}

func sampleLetter() render.Letter {
	return render.Letter{
		Date:           "2. März 2026",
		RecipientBlock: []string{"Acme AG", "Bahnhofstrasse 1", "8001 Zürich"},
		RoleTitle:      "Software Engineer",
		Company:        "Acme AG",
		Subject:        "Bewerbung als Software Engineer",
		Salutation:     "Sehr geehrte Frau Keller",
		BodyParagraphs: []string{
			"Mit grossem Interesse habe ich Ihre Ausschreibung gelesen und bewerbe mich als Software Engineer.",
			"In meiner aktuellen Rolle verantworte ich den Betrieb mehrerer Go-Services und bringe die geforderte Erfahrung mit Cloud-Infrastruktur mit.",
			"Gerne überzeuge ich Sie in einem persönlichen Gespräch von meiner Motivation.",
		},
		Closing:       "Freundliche Grüsse",
		SignatureName: "Andri Heeb",
	}
}

func validateRenderedDocx(docxBytes []byte) error {
	reader, err := zip.NewReader(bytes.NewReader(docxBytes), int64(len(docxBytes)))
	if err != nil {
		return err
	}

	for _, file := range reader.File {
		if strings.ReplaceAll(file.Name, "\\", "/") != "word/document.xml" {
			continue
		}
		rc, err := file.Open()
		if err != nil {
			return err
		}
		defer rc.Close()

		content, err := io.ReadAll(rc)
		if err != nil {
			return err
		}
		if idx := strings.Index(string(content), "{{"); idx != -1 {
			return fmt.Errorf("unresolved template tokens remain in document.xml")
		}
		return nil
	}

	return fmt.Errorf("document.xml not found in docx")
}
