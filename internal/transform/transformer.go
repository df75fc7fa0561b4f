package transform

import (
	"fmt"
	"strings"

	"catalog/feedsync/internal/domain"

	log "github.com/sirupsen/logrus"
)

// Declaration is prepended once to every serialized document.
const Declaration = `<?xml version="1.0" encoding="UTF-8"?>` + "\n"

type Options struct {
	Indent       string
	VariantName1 string
	VariantName2 string
}

// Stats counts what a transformation produced.
type Stats struct {
	Scripts  int
	Products int
	Variants int
	Images   int
}

type Result struct {
	Document string
	Stats    Stats
}

type Transformer struct {
	opts Options
}

func NewTransformer(opts Options) *Transformer {
	if opts.VariantName1 == "" {
		opts.VariantName1 = DefaultVariantName1
	}
	if opts.VariantName2 == "" {
		opts.VariantName2 = DefaultVariantName2
	}
	return &Transformer{opts: opts}
}

// Transform converts a source feed document into the storefront schema.
// Any error aborts the whole document; no partial output is returned.
func (t *Transformer) Transform(input string) (*Result, error) {
	src, err := Parse(strings.NewReader(input))
	if err != nil {
		return nil, err
	}

	out, stats, err := t.convert(src)
	if err != nil {
		return nil, err
	}

	var sb strings.Builder
	sb.WriteString(Declaration)
	if err := Encode(&sb, out, t.opts.Indent); err != nil {
		return nil, fmt.Errorf("failed to serialize document: %w", err)
	}

	log.Debugf("Transformed %d products, %d variants, %d images, %d scripts",
		stats.Products, stats.Variants, stats.Images, stats.Scripts)

	return &Result{Document: sb.String(), Stats: stats}, nil
}

func (t *Transformer) convert(src *Node) (*Node, Stats, error) {
	var stats Stats
	out := NewElement(targetRoot)

	for _, script := range src.FindAll(srcScript) {
		out.AppendChild(script)
		stats.Scripts++
	}

	for _, product := range src.FindAll(srcProduct) {
		converted, err := t.convertProduct(product, &stats)
		if err != nil {
			return nil, Stats{}, err
		}
		out.AppendChild(converted)
		stats.Products++
	}

	return out, stats, nil
}

func (t *Transformer) convertProduct(src *Node, stats *Stats) (*Node, error) {
	code, err := identity(src, srcCode, "")
	if err != nil {
		return nil, err
	}
	wsCode, err := identity(src, srcWSCode, code)
	if err != nil {
		return nil, err
	}

	out := NewElement(targetProduct)
	out.SetAttr("id", code)
	out.SetAttr("productCode", wsCode)

	for _, rule := range productFields {
		value, err := rule.apply(src, code)
		if err != nil {
			return nil, err
		}
		out.SubElement(rule.target, value)
	}

	images := src.Find(srcImages).FindAll(srcImageItem)
	for i, img := range images {
		out.SubElement(fmt.Sprintf("image%d", i+1), img.InnerText())
	}
	stats.Images += len(images)

	variants := out.SubElement("variants", "")
	for _, sub := range src.Find(srcSubs).FindAll(srcSub) {
		variant, err := t.convertVariant(sub, code)
		if err != nil {
			return nil, err
		}
		variants.AppendChild(variant)
		stats.Variants++
	}

	return out, nil
}

func (t *Transformer) convertVariant(src *Node, product string) (*Node, error) {
	values := make(map[string]string, 3)
	for _, field := range []string{srcType1, srcType2, srcStock} {
		elem := src.Find(field)
		if elem == nil {
			return nil, &domain.MissingFieldError{Product: product, Field: srcSub + "/" + field}
		}
		values[field] = elem.InnerText()
	}

	out := NewElement("variant")
	out.SubElement("name1", t.opts.VariantName1)
	out.SubElement("value1", values[srcType1])
	out.SubElement("name2", t.opts.VariantName2)
	out.SubElement("value2", values[srcType2])
	out.SubElement("quantity", values[srcStock])
	out.SubElement("barcode", optionalText(src, srcBarcode))
	return out, nil
}

func (r fieldRule) apply(src *Node, product string) (string, error) {
	if r.source == "" {
		return r.constant, nil
	}

	elem := src.Find(r.source)
	if elem == nil {
		if r.optional {
			return "", nil
		}
		return "", &domain.MissingFieldError{Product: product, Field: r.source}
	}

	value := elem.InnerText()
	if r.convert == nil {
		return value, nil
	}
	converted, err := r.convert(value)
	if err != nil {
		return "", &domain.InvalidFieldError{Product: product, Field: r.source, Value: value, Err: err}
	}
	return converted, nil
}

// identity reads a required identity field; empty text counts as missing.
func identity(src *Node, field, product string) (string, error) {
	elem := src.Find(field)
	if elem == nil || elem.InnerText() == "" {
		return "", &domain.MissingFieldError{Product: product, Field: field}
	}
	return elem.InnerText(), nil
}

func optionalText(src *Node, field string) string {
	if elem := src.Find(field); elem != nil {
		return elem.InnerText()
	}
	return ""
}
