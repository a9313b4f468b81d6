package xmldoc

import (
	"strings"
	"unicode/utf8"

	"github.com/beevik/etree"
)

// IsCData reports whether the first child token of e is a CDATA section.
// Only the leading token counts: content that starts with whitespace text
// followed by a CDATA block is treated as plain text.
func IsCData(e *etree.Element) bool {
	if e == nil || len(e.Child) == 0 {
		return false
	}
	cd, ok := e.Child[0].(*etree.CharData)
	return ok && cd.IsCData()
}

// TextContent concatenates all character data below e in document order,
// CDATA sections included, the way a DOM textContent does.
func TextContent(e *etree.Element) string {
	var b strings.Builder
	appendText(&b, e)
	return b.String()
}

func appendText(b *strings.Builder, e *etree.Element) {
	for _, tok := range e.Child {
		switch t := tok.(type) {
		case *etree.CharData:
			b.WriteString(t.Data)
		case *etree.Element:
			appendText(b, t)
		}
	}
}

// SetContent replaces every child token of e with a single text or CDATA
// node carrying content. Empty text content leaves e without children; an
// empty CDATA section is still written.
func SetContent(e *etree.Element, content string, cdata bool) {
	for len(e.Child) > 0 {
		e.RemoveChildAt(0)
	}
	switch {
	case cdata:
		e.CreateCData(content)
	case content != "":
		e.CreateText(content)
	}
}

// SplitCData rewrites the CDATA sections below root so that the serialized
// tree can be encoded in charset without loss. Runs of characters the
// charset cannot hold move into text nodes between sections, where [Encode]
// writes them as character references, and a "]]>" inside a section is split
// across two sections. Content that started with a CDATA section still does,
// so [IsCData] and [TextContent] read the same values after a round trip.
// An empty charset means DefaultEncoding.
func SplitCData(root *etree.Element, charset string) error {
	if root == nil {
		return nil
	}
	if charset == "" {
		charset = DefaultEncoding
	}
	enc, err := lookupEncoding(charset)
	if err != nil {
		return err
	}
	encoder := enc.NewEncoder()
	known := make(map[rune]bool)
	fits := func(r rune) bool {
		if r < utf8.RuneSelf {
			return true
		}
		ok, seen := known[r]
		if !seen {
			_, err := encoder.String(string(r))
			ok = err == nil
			known[r] = ok
		}
		return ok
	}
	splitCData(root, fits)
	return nil
}

func splitCData(e *etree.Element, fits func(rune) bool) {
	for i := 0; i < len(e.Child); i++ {
		switch t := e.Child[i].(type) {
		case *etree.Element:
			splitCData(t, fits)
		case *etree.CharData:
			if !t.IsCData() {
				continue
			}
			parts := cdataParts(t.Data, fits)
			if parts == nil {
				continue
			}
			e.RemoveChildAt(i)
			for j, p := range parts {
				e.InsertChildAt(i+j, p)
			}
			i += len(parts) - 1
		}
	}
}

// cdataParts returns the tokens replacing one CDATA section, or nil when the
// section can be written as it is.
func cdataParts(data string, fits func(rune) bool) []etree.Token {
	if !strings.Contains(data, "]]>") && strings.IndexFunc(data, func(r rune) bool { return !fits(r) }) < 0 {
		return nil
	}

	var parts []etree.Token
	var cdata, text strings.Builder
	flushCData := func() {
		if cdata.Len() > 0 {
			parts = append(parts, etree.NewCData(cdata.String()))
			cdata.Reset()
		}
	}
	flushText := func() {
		if text.Len() > 0 {
			parts = append(parts, etree.NewText(text.String()))
			text.Reset()
		}
	}
	for _, r := range data {
		if !fits(r) {
			flushCData()
			text.WriteRune(r)
			continue
		}
		flushText()
		if r == '>' && strings.HasSuffix(cdata.String(), "]]") {
			flushCData()
		}
		cdata.WriteRune(r)
	}
	flushCData()
	flushText()

	if cd, ok := parts[0].(*etree.CharData); !ok || !cd.IsCData() {
		parts = append([]etree.Token{etree.NewCData("")}, parts...)
	}
	return parts
}
