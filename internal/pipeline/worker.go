package pipeline

import (
	"bytes"
	"fmt"
	"os"
	"unicode/utf8"

	"github.com/Aman-CERP/wordex/internal/corpus"
	"github.com/Aman-CERP/wordex/internal/errors"
	"github.com/Aman-CERP/wordex/internal/index"
)

// nulProbeLen bounds the binary sniff to the head of the file.
const nulProbeLen = 8192

// processDoc reads and tokenizes one document. Read failures come back as
// skippable corpus errors unless escalated by configuration.
func (c *Coordinator) processDoc(doc corpus.Document) (*index.Fragment, error) {
	if c.cfg.MaxFileSize > 0 && doc.Size > c.cfg.MaxFileSize {
		return nil, c.classify(doc, errors.New(errors.ErrCodeDocTooLarge,
			fmt.Sprintf("%s is %d bytes, limit is %d", doc.Path, doc.Size, c.cfg.MaxFileSize), nil))
	}

	data, err := os.ReadFile(doc.Path)
	if err != nil {
		var code string
		switch {
		case os.IsNotExist(err):
			code = errors.ErrCodeDocNotFound
		case os.IsPermission(err):
			code = errors.ErrCodeDocPermission
		default:
			code = errors.ErrCodeDocIO
		}
		return nil, c.classify(doc, errors.Wrap(code, err))
	}

	if !looksLikeText(data) {
		return nil, c.classify(doc, errors.New(errors.ErrCodeDocDecode,
			fmt.Sprintf("%s is not valid UTF-8 text", doc.Path), nil))
	}

	tokens := c.cfg.Rule.Tokenize(string(data))
	return index.NewFragment(doc.ID, doc.Path, tokens), nil
}

// classify applies the fatal-kinds escalation policy to a document error.
func (c *Coordinator) classify(doc corpus.Document, err *errors.WordexError) error {
	err = err.WithDetail("doc_id", fmt.Sprintf("%d", doc.ID)).
		WithDetail("path", doc.Path)
	if _, fatal := c.cfg.FatalKinds[errorKind(err.Code)]; fatal {
		return err.Escalate()
	}
	return err
}

// errorKind maps a document error code to its configuration kind name.
func errorKind(code string) string {
	switch code {
	case errors.ErrCodeDocNotFound:
		return "not-found"
	case errors.ErrCodeDocPermission:
		return "permission"
	case errors.ErrCodeDocTooLarge:
		return "too-large"
	case errors.ErrCodeDocDecode:
		return "decode"
	case errors.ErrCodeDocIO:
		return "io"
	default:
		return ""
	}
}

// looksLikeText rejects binary content: a NUL in the head of the file or
// invalid UTF-8 anywhere.
func looksLikeText(data []byte) bool {
	probe := data
	if len(probe) > nulProbeLen {
		probe = probe[:nulProbeLen]
	}
	if bytes.IndexByte(probe, 0) >= 0 {
		return false
	}
	return utf8.Valid(data)
}
