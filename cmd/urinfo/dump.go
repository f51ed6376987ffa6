package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/x-research-team/unirt/rt/property"
	"github.com/x-research-team/unirt/rt/query"
	"github.com/x-research-team/unirt/rt/result"
)

// dumpProperties печатает все свойства типа объекта, которые можно получить
// для запроса base. Неподдерживаемые бэкендом свойства помечаются отдельно.
func dumpProperties(ctx context.Context, w io.Writer, d *query.Dispatcher, base query.Request) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, desc := range property.Descriptors(base.Kind) {
		req := base
		req.Property = desc.ID

		value, err := d.Fetch(ctx, req)
		switch {
		case errors.Is(err, result.ErrInvalidEnumeration):
			fmt.Fprintf(tw, "  %s\t<unsupported>\n", desc.Name)
			continue
		case err != nil:
			fmt.Fprintf(tw, "  %s\t<%s>\n", desc.Name, result.CodeOf(err))
			continue
		}

		text, err := formatValue(desc, value)
		if err != nil {
			return fmt.Errorf("%s: %w", desc.Name, err)
		}
		fmt.Fprintf(tw, "  %s\t%s\n", desc.Name, text)
	}
	return tw.Flush()
}

// fetchString получает строковое свойство по двухфазному соглашению.
func fetchString(ctx context.Context, d *query.Dispatcher, req query.Request) string {
	value, err := d.Fetch(ctx, req)
	if err != nil {
		return "<" + result.CodeOf(err).String() + ">"
	}
	return query.String(value)
}
