package gallery

import (
	"fmt"
	"io"
)

// WriteText prints the gallery as plain text: every card followed by its
// detail.  The guests command uses it.
func (m *Model) WriteText(w io.Writer) error {
	guests, lang := m.Guests(), m.Lang()
	if len(guests) == 0 {
		_, err := fmt.Fprintln(w, m.EmptyText())
		return err
	}
	for _, g := range guests {
		d := detailOf(g, lang)
		photo := "-"
		if d.PhotoURL != nil {
			photo = *d.PhotoURL
		}
		if _, err := fmt.Fprintf(w, "#%d %s\n    %s\n    %s\n", g.Number, d.Name, d.Relation, photo); err != nil {
			return err
		}
		if d.About != "" {
			if _, err := fmt.Fprintf(w, "    %s\n", d.About); err != nil {
				return err
			}
		}
		for _, cl := range []Clip{d.Official, d.Funny} {
			val := cl.URL
			if val == "" {
				val = cl.Notice
			}
			if _, err := fmt.Fprintf(w, "    %s: %s\n", cl.Label, val); err != nil {
				return err
			}
		}
	}
	return nil
}
