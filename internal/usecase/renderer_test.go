package usecase

import (
	"strings"
	"testing"

	"telegram-offers-bot/internal/domain/model"
)

func fullProduct() model.Product {
	return model.Product{
		"ID":               "7",
		"Nombre":           "Whey Gold",
		"Marca":            "ACME",
		"Precio":           "29.99",
		"Descuento":        "20",
		"Precio_descuento": "23.99",
		"Descripcion":      "Proteína de suero aislada",
		"Categoria":        "Proteínas",
		"Objetivo":         "Volumen",
	}
}

func TestRenderProductFullRecordOrderAndSpacing(t *testing.T) {
	out := RenderProduct(fullProduct(), KindNew, "https://example.com/logo.png")

	// Every present field value appears, in documented section order.
	wantOrder := []string{
		"https://example.com/logo.png",
		"Nuevo Producto",
		"Whey Gold",
		"ACME",
		"29.99",
		"20",
		"23.99",
		"Proteína de suero aislada",
		"Proteínas",
		"Volumen",
	}
	pos := 0
	for _, want := range wantOrder {
		idx := strings.Index(out[pos:], want)
		if idx < 0 {
			t.Fatalf("output missing %q after position %d:\n%s", want, pos, out)
		}
		pos += idx
	}

	if strings.Contains(out, "\n\n\n") {
		t.Errorf("output has consecutive blank lines:\n%s", out)
	}
	if strings.HasPrefix(out, "\n") || strings.HasSuffix(out, "\n") {
		t.Errorf("output not trimmed:\n%q", out)
	}
}

func TestRenderProductSuffixesComeFromRenderer(t *testing.T) {
	out := RenderProduct(fullProduct(), KindNone, "")
	if !strings.Contains(out, "<s>29.99€</s>") {
		t.Errorf("original price should be struck through with euro suffix:\n%s", out)
	}
	if !strings.Contains(out, "20%") {
		t.Errorf("discount should carry percent suffix:\n%s", out)
	}
	if !strings.Contains(out, "<b>23.99€</b>") {
		t.Errorf("discounted price should be bold with euro suffix:\n%s", out)
	}
}

func TestRenderProductBanners(t *testing.T) {
	p := model.Product{"Nombre": "X"}
	cases := []struct {
		kind ChangeKind
		want string
	}{
		{KindNew, "🆕"},
		{KindDiscount, "🔥"},
		{KindSearch, "🔍"},
	}
	for _, tc := range cases {
		if out := RenderProduct(p, tc.kind, ""); !strings.Contains(out, tc.want) {
			t.Errorf("kind %v: missing banner %q in %q", tc.kind, tc.want, out)
		}
	}
	if out := RenderProduct(p, KindNone, ""); strings.Contains(out, "<b>Nuevo") || strings.Contains(out, "🔥") {
		t.Errorf("KindNone must not render a banner: %q", out)
	}
}

func TestRenderProductSparseRecord(t *testing.T) {
	p := model.Product{"Nombre": "Solo nombre", "Descuento": "NaN"}
	out := RenderProduct(p, KindNone, "")

	if out != "🔹 <b>Nombre:</b> Solo nombre" {
		t.Errorf("sparse record render = %q", out)
	}
}

func TestRenderProductEscapesHTML(t *testing.T) {
	p := model.Product{"Nombre": "A <b>& B</b>"}
	out := RenderProduct(p, KindNone, "")
	if strings.Contains(out, "<b>& B</b>") {
		t.Errorf("field values must be escaped: %q", out)
	}
	if !strings.Contains(out, "&lt;b&gt;&amp; B&lt;/b&gt;") {
		t.Errorf("expected escaped value in %q", out)
	}
}
