package ingest

import (
	"errors"
	"fmt"
	"strings"

	"study-assistant/internal/shared/apperr"
)

// StrategyKind enumerates the extraction strategies. The set is closed.
type StrategyKind int

const (
	StrategyHandwriting StrategyKind = iota + 1
	StrategyImage
	StrategyPDF
	StrategyWord
	StrategyPlainText
)

// Strategy is a fixed prompt and processing-method label.
type Strategy struct {
	Kind   StrategyKind
	Prompt string
	Method string
}

var strategies = map[StrategyKind]Strategy{
	StrategyHandwriting: {
		Kind:   StrategyHandwriting,
		Prompt: "This image contains handwritten text. Please extract and transcribe all handwritten text from this image. Preserve formatting where possible.",
		Method: "gemini_handwriting_1.5",
	},
	StrategyImage: {
		Kind:   StrategyImage,
		Prompt: "Extract all text content from this image. Preserve formatting, tables, and structure as much as possible.",
		Method: "gemini_image_1.5",
	},
	StrategyPDF: {
		Kind:   StrategyPDF,
		Prompt: "This is a PDF document. Extract all text content, preserving the structure, formatting, tables, and layout as much as possible.",
		Method: "gemini_pdf_1.5",
	},
	StrategyWord: {
		Kind:   StrategyWord,
		Prompt: "This is a Word document. Extract all text content, preserving the structure, formatting, tables, and layout as much as possible.",
		Method: "gemini_word_1.5",
	},
	StrategyPlainText: {
		Kind:   StrategyPlainText,
		Prompt: "This is a text document. Extract all content exactly as it appears.",
		Method: "gemini_text_1.5",
	},
}

// StrategyFor returns the strategy registered for kind.
func StrategyFor(kind StrategyKind) (Strategy, bool) {
	s, ok := strategies[kind]
	return s, ok
}

func (k StrategyKind) String() string {
	switch k {
	case StrategyHandwriting:
		return "handwriting"
	case StrategyImage:
		return "image"
	case StrategyPDF:
		return "pdf"
	case StrategyWord:
		return "word"
	case StrategyPlainText:
		return "text"
	default:
		return fmt.Sprintf("strategy(%d)", int(k))
	}
}

// ErrUnroutableType means an admitted type has no strategy. Admission should make this unreachable.
var ErrUnroutableType = errors.New("unroutable type")

// Route picks the extraction strategy for a canonical type. The first matching rule wins.
func Route(canonical MIMEType, isHandwritten bool) (Strategy, error) {
	kind, ok := routeKind(canonical, isHandwritten)
	strategy, registered := StrategyFor(kind)
	if !ok || !registered {
		return Strategy{}, apperr.Internal(
			fmt.Sprintf("No extraction strategy for %s", canonical),
			fmt.Errorf("%w: %s", ErrUnroutableType, canonical),
		)
	}
	return strategy, nil
}

func routeKind(canonical MIMEType, isHandwritten bool) (StrategyKind, bool) {
	s := string(canonical)
	switch {
	case canonical.IsImage() && isHandwritten:
		return StrategyHandwriting, true
	case canonical.IsImage():
		return StrategyImage, true
	case canonical == MIMEPDF:
		return StrategyPDF, true
	case strings.Contains(s, "word") || strings.Contains(s, "doc"):
		return StrategyWord, true
	case canonical == MIMEText:
		return StrategyPlainText, true
	default:
		return 0, false
	}
}
