package render

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
)

// Letter is the renderer's input: the fully assembled letter content.
type Letter struct {
	Date           string
	RecipientBlock []string
	RoleTitle      string
	Company        string
	Subject        string
	Salutation     string
	BodyParagraphs []string
	Closing        string
	SignatureName  string
}

// Template tokens. The four primary tokens must exist in the template;
// secondary tokens are replaced when present and ignored otherwise.
const (
	tokenDate      = "{{date}}"
	tokenRecipient = "{{recipient_address}}"
	tokenRole      = "{{role}}"
	tokenBody      = "{{body_of_motivational_letter}}"
)

var requiredTokens = []string{tokenDate, tokenRecipient, tokenRole, tokenBody}

// fallbackIndentTwips positions the recipient block when the template's date
// paragraph carries no tab stop: roughly 60% of the usable A4 width.
const fallbackIndentTwips = 5780

// Options tune letter rendering.
type Options struct {
	// RecipientIndentTwips overrides the tab position for the recipient
	// block. Zero derives it from the template's date paragraph.
	RecipientIndentTwips int
}

// LetterDOCX renders a letter into a DOCX template. Only word/document.xml
// is rewritten; every other archive entry is copied through untouched.
func LetterDOCX(template []byte, letter Letter, opts Options) ([]byte, error) {
	reader, err := zip.NewReader(bytes.NewReader(template), int64(len(template)))
	if err != nil {
		return nil, fmt.Errorf("template is not a valid docx archive: %w", err)
	}

	var output bytes.Buffer
	writer := zip.NewWriter(&output)

	rendered := false
	for _, file := range reader.File {
		content, err := readZipFile(file)
		if err != nil {
			return nil, err
		}
		if normalizeZipName(file.Name) == "word/document.xml" {
			updated, err := renderLetterXML(string(content), letter, opts)
			if err != nil {
				return nil, err
			}
			content = []byte(updated)
			rendered = true
		}
		if err := writeZipFile(writer, file, content); err != nil {
			return nil, err
		}
	}
	if !rendered {
		return nil, fmt.Errorf("template has no word/document.xml")
	}

	if err := writer.Close(); err != nil {
		return nil, err
	}
	return output.Bytes(), nil
}

func renderLetterXML(xmlText string, letter Letter, opts Options) (string, error) {
	rootStart, rootEnd, err := extractRootTags(xmlText)
	if err != nil {
		return "", err
	}
	root, header, err := parseXMLDocument(xmlText)
	if err != nil {
		return "", err
	}
	body := findBodyNode(root)
	if body == nil {
		return "", fmt.Errorf("document.xml has no body element")
	}

	if missing := missingTokens(root); len(missing) > 0 {
		return "", fmt.Errorf("template is missing required placeholders: %s", strings.Join(missing, ", "))
	}

	tabs := recipientTabs(root, opts)

	if err := expandRecipientBlock(root, letter.RecipientBlock, tabs); err != nil {
		return "", err
	}
	if err := expandLetterBody(root, letter); err != nil {
		return "", err
	}

	subject := letter.Subject
	if subject == "" {
		subject = letter.RoleTitle
	}
	replaceTokensInNode(root, map[string]string{
		tokenDate: letter.Date,
		tokenRole: subject,
	})

	// Secondary tokens for customized templates.
	bodyText := strings.Join(letter.BodyParagraphs, "\n\n")
	replaceTokensInNode(root, map[string]string{
		"{{date_line}}":       letter.Date,
		"{{company}}":         letter.Company,
		"{{role_title}}":      letter.RoleTitle,
		"{{subject}}":         subject,
		"{{salutation}}":      letter.Salutation,
		"{{closing}}":         letter.Closing,
		"{{signature_name}}":  letter.SignatureName,
		"{{sender_block}}":    letter.SignatureName,
		"{{recipient_block}}": strings.Join(letter.RecipientBlock, "\n"),
		"{{body_paragraphs}}": bodyText,
		"{{body_listing}}":    bodyText,
	})

	xmlText, err = encodeXMLDocument(header, root, rootStart, rootEnd)
	if err != nil {
		return "", err
	}
	if token := findRemainingToken(xmlText); token != "" {
		return "", fmt.Errorf("unresolved template token: %s", token)
	}
	return xmlText, nil
}

func missingTokens(root *xmlNode) []string {
	var docText strings.Builder
	walkXML(root, func(n *xmlNode) bool {
		if isElement(n, "p") {
			docText.WriteString(paragraphText(n))
			docText.WriteString("\n")
		}
		return true
	})
	text := docText.String()

	var missing []string
	for _, token := range requiredTokens {
		if !strings.Contains(text, token) {
			missing = append(missing, token)
		}
	}
	return missing
}

// recipientTabs returns the tab-stop definition for the recipient block: a
// clone of the date paragraph's tabs so the block lines up with the date
// column, or a synthesized stop when the template defines none.
func recipientTabs(root *xmlNode, opts Options) *xmlNode {
	if opts.RecipientIndentTwips <= 0 {
		if _, p := locateParagraph(root, tokenDate); p != nil {
			if tabs := paragraphTabs(p); tabs != nil {
				return cloneNode(tabs)
			}
		}
		return makeTabsNode(fallbackIndentTwips)
	}
	return makeTabsNode(opts.RecipientIndentTwips)
}

// expandRecipientBlock rewrites the placeholder paragraph into a tabbed
// block: each address line starts with a tab at the date column, lines
// separated by soft breaks so the block stays one paragraph.
func expandRecipientBlock(root *xmlNode, lines []string, tabs *xmlNode) error {
	parent, p := locateParagraph(root, tokenRecipient)
	if p == nil {
		return fmt.Errorf("template is missing required placeholders: %s", tokenRecipient)
	}
	if len(lines) == 0 {
		removeChild(parent, p)
		return nil
	}

	runProps := firstRunProps(p)
	setParagraphTabs(p, tabs)

	children := []*xmlNode{}
	if props := paragraphProps(p); props != nil {
		children = append(children, props)
	}
	for i, line := range lines {
		run := &xmlNode{Name: wmlName("r")}
		if runProps != nil {
			run.Children = append(run.Children, cloneNode(runProps))
		}
		if i > 0 {
			run.Children = append(run.Children, &xmlNode{Name: wmlName("br")})
		}
		run.Children = append(run.Children,
			&xmlNode{Name: wmlName("tab")},
			makeTextNode(line),
		)
		children = append(children, run)
	}
	p.Children = children
	return nil
}

// expandLetterBody replaces the body placeholder paragraph with the full
// letter flow: salutation, paragraphs separated by blank lines, closing and
// signature. Each paragraph clones the placeholder so its formatting holds.
func expandLetterBody(root *xmlNode, letter Letter) error {
	parent, p := locateParagraph(root, tokenBody)
	if p == nil {
		return fmt.Errorf("template is missing required placeholders: %s", tokenBody)
	}

	lines := []string{letter.Salutation, ""}
	for i, paragraph := range letter.BodyParagraphs {
		lines = append(lines, paragraph)
		if i < len(letter.BodyParagraphs)-1 {
			lines = append(lines, "")
		}
	}
	lines = append(lines, "", letter.Closing, "", letter.SignatureName)

	runProps := firstRunProps(p)
	paragraphs := make([]*xmlNode, 0, len(lines))
	for _, line := range lines {
		clone := cloneNode(p)
		children := []*xmlNode{}
		if props := paragraphProps(clone); props != nil {
			children = append(children, props)
		}
		if line != "" {
			run := &xmlNode{Name: wmlName("r")}
			if runProps != nil {
				run.Children = append(run.Children, cloneNode(runProps))
			}
			run.Children = append(run.Children, makeTextNode(line))
			children = append(children, run)
		}
		clone.Children = children
		paragraphs = append(paragraphs, clone)
	}

	replaceChild(parent, p, paragraphs)
	return nil
}

// locateParagraph finds the first paragraph whose text contains token,
// returning the paragraph and its parent for splicing.
func locateParagraph(root *xmlNode, token string) (*xmlNode, *xmlNode) {
	var parent, match *xmlNode
	var search func(node *xmlNode) bool
	search = func(node *xmlNode) bool {
		if node == nil || node.IsText {
			return true
		}
		for _, child := range node.Children {
			if isElement(child, "p") && strings.Contains(paragraphText(child), token) {
				parent, match = node, child
				return false
			}
		}
		for _, child := range node.Children {
			if !search(child) {
				return false
			}
		}
		return true
	}
	search(root)
	return parent, match
}

func removeChild(parent, child *xmlNode) {
	if parent == nil {
		return
	}
	for i, c := range parent.Children {
		if c == child {
			parent.Children = append(parent.Children[:i], parent.Children[i+1:]...)
			return
		}
	}
}

func replaceChild(parent, child *xmlNode, replacements []*xmlNode) {
	if parent == nil {
		return
	}
	for i, c := range parent.Children {
		if c == child {
			out := make([]*xmlNode, 0, len(parent.Children)-1+len(replacements))
			out = append(out, parent.Children[:i]...)
			out = append(out, replacements...)
			out = append(out, parent.Children[i+1:]...)
			parent.Children = out
			return
		}
	}
}

func paragraphProps(p *xmlNode) *xmlNode {
	if p == nil {
		return nil
	}
	for _, child := range p.Children {
		if isElement(child, "pPr") {
			return child
		}
	}
	return nil
}

func paragraphTabs(p *xmlNode) *xmlNode {
	props := paragraphProps(p)
	if props == nil {
		return nil
	}
	for _, child := range props.Children {
		if isElement(child, "tabs") {
			return child
		}
	}
	return nil
}

// setParagraphTabs installs tabs into the paragraph's properties, replacing
// any existing definition. tabs must sit before spacing and indentation in
// the pPr element order.
func setParagraphTabs(p *xmlNode, tabs *xmlNode) {
	if tabs == nil {
		return
	}
	props := paragraphProps(p)
	if props == nil {
		props = &xmlNode{Name: wmlName("pPr")}
		p.Children = append([]*xmlNode{props}, p.Children...)
	}
	kept := make([]*xmlNode, 0, len(props.Children)+1)
	for _, child := range props.Children {
		if !isElement(child, "tabs") {
			kept = append(kept, child)
		}
	}
	insertAt := 0
	for i, child := range kept {
		if isElement(child, "pStyle") {
			insertAt = i + 1
		}
	}
	props.Children = append(kept[:insertAt:insertAt], append([]*xmlNode{tabs}, kept[insertAt:]...)...)
}

func firstRunProps(p *xmlNode) *xmlNode {
	if p == nil {
		return nil
	}
	for _, child := range p.Children {
		if !isElement(child, "r") {
			continue
		}
		for _, rc := range child.Children {
			if isElement(rc, "rPr") {
				return rc
			}
		}
		return nil
	}
	return nil
}

func makeTabsNode(posTwips int) *xmlNode {
	return &xmlNode{
		Name: wmlName("tabs"),
		Children: []*xmlNode{{
			Name: wmlName("tab"),
			Attr: []xml.Attr{
				{Name: xml.Name{Space: wmlNamespace, Local: "val"}, Value: "left"},
				{Name: xml.Name{Space: wmlNamespace, Local: "pos"}, Value: strconv.Itoa(posTwips)},
			},
		}},
	}
}

func makeTextNode(text string) *xmlNode {
	return &xmlNode{
		Name: wmlName("t"),
		Attr: []xml.Attr{
			{Name: xml.Name{Space: "http://www.w3.org/XML/1998/namespace", Local: "space"}, Value: "preserve"},
		},
		Children: []*xmlNode{{IsText: true, Text: text}},
	}
}

func wmlName(local string) xml.Name {
	return xml.Name{Space: wmlNamespace, Local: local}
}

var tokenPattern = regexp.MustCompile(`{{[^}]+}}`)

func findRemainingToken(xmlText string) string {
	return tokenPattern.FindString(xmlText)
}

func readZipFile(file *zip.File) ([]byte, error) {
	rc, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

func writeZipFile(writer *zip.Writer, source *zip.File, content []byte) error {
	header := source.FileHeader
	header.Name = normalizeZipName(source.Name)

	dst, err := writer.CreateHeader(&header)
	if err != nil {
		return err
	}
	_, err = dst.Write(content)
	return err
}

func normalizeZipName(name string) string {
	return strings.ReplaceAll(name, "\\", "/")
}
