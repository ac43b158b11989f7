// Package errors holds the typed failure returned by every parse in the
// module.
package errors

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Kind classifies a parse failure.
type Kind int

const (
	KindUnknown Kind = iota
	ParsingString
	EmptyDocument
	RequiredElementMissing
	RequiredAttributeMissing
	RequiredContentMissing
	DuplicateElement
	NotISO8601
	UnknownContent
	UnhandledElement
)

var kindNames = map[Kind]string{
	KindUnknown:              "unknown",
	ParsingString:            "parsing_string",
	EmptyDocument:            "empty_document",
	RequiredElementMissing:   "required_element_missing",
	RequiredAttributeMissing: "required_attribute_missing",
	RequiredContentMissing:   "required_content_missing",
	DuplicateElement:         "duplicate_element",
	NotISO8601:               "not_iso8601",
	UnknownContent:           "unknown_content",
	UnhandledElement:         "unhandled_element",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Sentinels for use with errors.Is. Only the Kind is compared.
var (
	ErrParsingString            = &Error{Kind: ParsingString}
	ErrEmptyDocument            = &Error{Kind: EmptyDocument}
	ErrRequiredElementMissing   = &Error{Kind: RequiredElementMissing}
	ErrRequiredAttributeMissing = &Error{Kind: RequiredAttributeMissing}
	ErrRequiredContentMissing   = &Error{Kind: RequiredContentMissing}
	ErrDuplicateElement         = &Error{Kind: DuplicateElement}
	ErrNotISO8601               = &Error{Kind: NotISO8601}
	ErrUnknownContent           = &Error{Kind: UnknownContent}
	ErrUnhandledElement         = &Error{Kind: UnhandledElement}
)

// Error is a parse failure with enough positional context to build an
// actionable message.
type Error struct {
	Kind Kind

	Element   string // Local name of the offending element
	Prefix    string // Namespace prefix of the offending element, as written in the document
	Parent    string // Containing element
	Attribute string // Offending attribute, for attribute-level failures
	Value     string // Literal offending value, for content failures

	Err     error // The error this wraps
	Details []Detail
}

type Detail struct {
	Field string `json:"field"`
	Error string `json:"error"`
}

// Positional arguments accepted by E.
type (
	Element   string
	Prefix    string
	Parent    string
	Attribute string
	Value     string
)

func (e *Error) qualified() string {
	if e.Prefix == "" {
		return e.Element
	}
	return e.Prefix + ":" + e.Element
}

func (e *Error) Error() string {
	var msg string
	switch e.Kind {
	case ParsingString:
		msg = "error parsing xml document"
	case EmptyDocument:
		msg = "xml document was empty"
	case RequiredElementMissing:
		msg = fmt.Sprintf("required element <%s> missing from <%s>", e.qualified(), e.Parent)
	case RequiredAttributeMissing:
		msg = fmt.Sprintf("required attribute @%s missing from <%s>", e.Attribute, e.qualified())
	case RequiredContentMissing:
		msg = fmt.Sprintf("required content of <%s> in <%s> missing", e.qualified(), e.Parent)
	case DuplicateElement:
		msg = fmt.Sprintf("element <%s> duplicated in <%s>", e.qualified(), e.Parent)
	case NotISO8601:
		if e.Attribute != "" {
			msg = fmt.Sprintf("attribute @%s of <%s> was not an ISO 8601 timestamp: %q", e.Attribute, e.qualified(), e.Value)
		} else {
			msg = fmt.Sprintf("content of <%s> in <%s> was not an ISO 8601 timestamp: %q", e.qualified(), e.Parent, e.Value)
		}
	case UnknownContent:
		if e.Attribute != "" {
			msg = fmt.Sprintf("attribute @%s of <%s> had unknown value %q", e.Attribute, e.qualified(), e.Value)
		} else {
			msg = fmt.Sprintf("content of <%s> in <%s> had unknown value %q", e.qualified(), e.Parent, e.Value)
		}
	case UnhandledElement:
		msg = fmt.Sprintf("unhandled <%s> element as a child of <%s>", e.qualified(), e.Parent)
	default:
		msg = "unknown parse failure"
	}

	if e.Err != nil {
		msg = fmt.Sprintf("%s: %s", msg, e.Err)
	}
	if len(e.Details) > 0 {
		msg = fmt.Sprintf("%s, details: %v", msg, e.Details)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error of the same Kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

type transport struct {
	Kind      string   `json:"kind"`
	Message   string   `json:"message"`
	Element   string   `json:"element,omitempty"`
	Prefix    string   `json:"prefix,omitempty"`
	Parent    string   `json:"parent,omitempty"`
	Attribute string   `json:"attribute,omitempty"`
	Value     string   `json:"value,omitempty"`
	Cause     string   `json:"cause,omitempty"`
	Details   []Detail `json:"details"`
}

func (e *Error) MarshalJSON() ([]byte, error) {
	var cause string
	if e.Err != nil {
		cause = e.Err.Error()
	}

	return json.Marshal(transport{
		Kind:      e.Kind.String(),
		Message:   e.Error(),
		Element:   e.Element,
		Prefix:    e.Prefix,
		Parent:    e.Parent,
		Attribute: e.Attribute,
		Value:     e.Value,
		Cause:     cause,
		Details:   e.Details,
	})
}

func (e *Error) UnmarshalJSON(byts []byte) error {
	t := transport{}
	if err := json.Unmarshal(byts, &t); err != nil {
		return err
	}

	e.Kind = KindUnknown
	for k, name := range kindNames {
		if name == t.Kind {
			e.Kind = k
		}
	}
	e.Element = t.Element
	e.Prefix = t.Prefix
	e.Parent = t.Parent
	e.Attribute = t.Attribute
	e.Value = t.Value
	e.Details = t.Details
	e.Err = nil
	if t.Cause != "" {
		e.Err = errors.New(t.Cause)
	}
	return nil
}

// E builds an *Error from any mix of a Kind, positional arguments, a wrapped
// error, a message string and details.
func E(args ...any) *Error {
	ret := &Error{}

	for _, arg := range args {
		switch arg := arg.(type) {
		case Kind:
			ret.Kind = arg
		case Element:
			ret.Element = string(arg)
		case Prefix:
			ret.Prefix = string(arg)
		case Parent:
			ret.Parent = string(arg)
		case Attribute:
			ret.Attribute = string(arg)
		case Value:
			ret.Value = string(arg)
		case string:
			ret.Err = errors.New(arg)
		case error:
			ret.Err = arg
		case Detail:
			ret.Details = append(ret.Details, arg)
		case []Detail:
			ret.Details = append(ret.Details, arg...)
		}
	}

	return ret
}

// Reparent rewrites an UnhandledElement failure about the element
// prefix:element so it names parent as the containing element. Failures about
// its descendants keep their own parent, and other errors pass through
// untouched.
func Reparent(err error, prefix, element, parent string) error {
	var pErr *Error
	if !errors.As(err, &pErr) || pErr.Kind != UnhandledElement {
		return err
	}
	if pErr.Prefix != prefix || pErr.Element != element {
		return err
	}

	cp := *pErr
	cp.Parent = parent
	return &cp
}
