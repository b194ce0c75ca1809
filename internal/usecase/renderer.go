package usecase

import (
	"html"
	"strings"

	"telegram-offers-bot/internal/domain/model"
)

// ChangeKind tags a rendered product with why it is being sent.
type ChangeKind int

const (
	KindNone ChangeKind = iota
	KindNew
	KindDiscount
	KindSearch
)

func (k ChangeKind) String() string {
	switch k {
	case KindNew:
		return "new"
	case KindDiscount:
		return "discount"
	case KindSearch:
		return "search"
	default:
		return "none"
	}
}

// RenderProduct formats one product as Telegram HTML. Sections, top to
// bottom: invisible logo anchor + change banner, name/brand, prices,
// description, category/objective. Absent fields are skipped and empty
// sections collapse, so the output never contains two consecutive blank
// lines. Currency and percent suffixes are appended here, never sourced
// from the sheet.
func RenderProduct(p model.Product, kind ChangeKind, logoURL string) string {
	var groups [][]string

	var head []string
	if strings.TrimSpace(logoURL) != "" {
		// Zero-width joiner inside a link: forces a preview image without
		// occupying a visible line.
		head = append(head, `<a href="`+logoURL+`">&#8205;</a>`)
	}
	switch kind {
	case KindNew:
		head = append(head, "🆕 <b>Nuevo Producto:</b>")
	case KindDiscount:
		head = append(head, "🔥 <b>¡Nuevo descuento!</b>")
	case KindSearch:
		head = append(head, "🔍 <b>Resultado de búsqueda:</b>")
	}
	groups = append(groups, head)

	var ident []string
	if v, ok := p.Value(model.FieldName); ok {
		ident = append(ident, "🔹 <b>Nombre:</b> "+html.EscapeString(v))
	}
	if v, ok := p.Value(model.FieldBrand); ok {
		ident = append(ident, "🔸 <b>Marca:</b> "+html.EscapeString(v))
	}
	groups = append(groups, ident)

	var prices []string
	if v, ok := p.Value(model.FieldPrice); ok {
		prices = append(prices, "💲 <b>Precio original:</b> <s>"+html.EscapeString(v)+"€</s>")
	}
	if v, ok := p.Value(model.FieldDiscount); ok {
		prices = append(prices, "🎯 <b>Descuento:</b> "+html.EscapeString(v)+"%")
	}
	if v, ok := p.Value(model.FieldDiscountPrice); ok {
		prices = append(prices, "✅ <b>Precio con descuento:</b> <b>"+html.EscapeString(v)+"€</b>")
	}
	groups = append(groups, prices)

	if v, ok := p.Value(model.FieldDescription); ok {
		groups = append(groups, []string{"📝 <b>Descripción:</b>\n" + html.EscapeString(v)})
	}

	var class []string
	if v, ok := p.Value(model.FieldCategory); ok {
		class = append(class, "📦 <b>Categoria:</b> "+html.EscapeString(v))
	}
	if v, ok := p.Value(model.FieldObjective); ok {
		class = append(class, "🎯 <b>Objetivo:</b> "+html.EscapeString(v))
	}
	groups = append(groups, class)

	parts := make([]string, 0, len(groups))
	for _, g := range groups {
		if len(g) > 0 {
			parts = append(parts, strings.Join(g, "\n"))
		}
	}
	return strings.Join(parts, "\n\n")
}
