package ui

import (
	"context"
	"fmt"
	"io"

	twmerge "github.com/Oudwins/tailwind-merge-go"
	"github.com/a-h/templ"
)

// Attrs holds attribute name/value pairs in render order.
// An attribute with an empty value is rendered as a boolean attribute.
type Attrs []string

// Class merges tailwind classes, later classes win on conflicts.
func Class(classes ...string) string {
	return twmerge.Merge(classes...)
}

// El renders an element with escaped attributes and the given children.
func El(tag string, attrs Attrs, children ...templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		err := openTag(w, tag, attrs)
		if err != nil {
			return err
		}
		for _, c := range children {
			if c == nil {
				continue
			}
			err = c.Render(ctx, w)
			if err != nil {
				return err
			}
		}
		_, err = fmt.Fprintf(w, "</%s>", tag)
		return err
	})
}

// Void renders an element without children or closing tag.
func Void(tag string, attrs Attrs) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		return openTag(w, tag, attrs)
	})
}

func Text(s string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, templ.EscapeString(s))
		return err
	})
}

func Textf(format string, args ...any) templ.Component {
	return Text(fmt.Sprintf(format, args...))
}

// Group renders components one after another.
func Group(children ...templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		for _, c := range children {
			if c == nil {
				continue
			}
			err := c.Render(ctx, w)
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// If renders c only when cond holds.
func If(cond bool, c templ.Component) templ.Component {
	if !cond {
		return nil
	}
	return c
}

func openTag(w io.Writer, tag string, attrs Attrs) error {
	_, err := fmt.Fprintf(w, "<%s", tag)
	if err != nil {
		return err
	}
	for i := 0; i+1 < len(attrs); i += 2 {
		if attrs[i+1] == "" {
			_, err = fmt.Fprintf(w, " %s", attrs[i])
		} else {
			_, err = fmt.Fprintf(w, ` %s="%s"`, attrs[i], templ.EscapeString(attrs[i+1]))
		}
		if err != nil {
			return err
		}
	}
	_, err = io.WriteString(w, ">")
	return err
}
