package report

import (
	"context"
	"fmt"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	marotoconfig "github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/border"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/orientation"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/core/entity"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"pathbench/pkg/apperror"
	"pathbench/pkg/config"
)

// PDFGenerator генератор PDF отчётов
type PDFGenerator struct {
	BaseGenerator
	cfg config.PDFConfig
}

// NewPDFGenerator создаёт новый генератор
func NewPDFGenerator(cfg config.PDFConfig) *PDFGenerator {
	return &PDFGenerator{cfg: cfg}
}

// Format возвращает формат генератора
func (g *PDFGenerator) Format() Format {
	return FormatPDF
}

// Стили
var (
	primaryColor   = &props.Color{Red: 52, Green: 152, Blue: 219}  // #3498db
	headerBgColor  = &props.Color{Red: 44, Green: 62, Blue: 80}    // #2c3e50
	lightGrayColor = &props.Color{Red: 236, Green: 240, Blue: 241} // #ecf0f1
	darkGrayColor  = &props.Color{Red: 127, Green: 140, Blue: 141} // #7f8c8d

	tableHeaderStyle = &props.Cell{
		BackgroundColor: primaryColor,
	}

	tableCellStyle = &props.Cell{
		BorderType:  border.Bottom,
		BorderColor: lightGrayColor,
	}
)

var pageSizes = map[string]pagesize.Type{
	"A3":     pagesize.A3,
	"A4":     pagesize.A4,
	"Letter": pagesize.Letter,
	"Legal":  pagesize.Legal,
}

func (g *PDFGenerator) fontSize() float64 {
	if g.cfg.FontSize > 0 {
		return g.cfg.FontSize
	}
	return 9
}

func (g *PDFGenerator) headerFontSize() float64 {
	if g.cfg.HeaderFontSize > 0 {
		return g.cfg.HeaderFontSize
	}
	return 16
}

func (g *PDFGenerator) buildConfig() *entity.Config {
	b := marotoconfig.NewBuilder().
		WithLeftMargin(orDefault(g.cfg.MarginLeft, 15)).
		WithTopMargin(orDefault(g.cfg.MarginTop, 15)).
		WithRightMargin(orDefault(g.cfg.MarginRight, 15)).
		WithBottomMargin(orDefault(g.cfg.MarginBottom, 15))

	if ps, ok := pageSizes[g.cfg.PageSize]; ok {
		b = b.WithPageSize(ps)
	}
	if g.cfg.Orientation == "landscape" {
		b = b.WithOrientation(orientation.Horizontal)
	}
	if g.cfg.EnablePageNumbers {
		b = b.WithPageNumber()
	}
	return b.Build()
}

func orDefault(v, def float64) float64 {
	if v > 0 {
		return v
	}
	return def
}

// Generate генерирует PDF отчёт
func (g *PDFGenerator) Generate(ctx context.Context, data *Data) ([]byte, error) {
	m := maroto.New(g.buildConfig())

	g.addHeader(m, data)

	g.addSection(m, "Summary")
	if len(data.Summaries) == 0 {
		m.AddRow(8, text.NewCol(12, "No results stored.", props.Text{Size: g.fontSize(), Color: darkGrayColor}))
	} else {
		g.addSummaryTable(m, data)
		g.addSection(m, "Mean Time by Size (s)")
		g.addPivotTable(m, data)
	}

	g.addFooter(m, data)

	doc, err := m.Generate()
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodeReportError, "failed to generate PDF")
	}
	return doc.GetBytes(), nil
}

func (g *PDFGenerator) addHeader(m core.Maroto, data *Data) {
	m.AddRow(15,
		text.NewCol(12, g.GetTitle(data), props.Text{
			Size:  g.headerFontSize() + 6,
			Style: fontstyle.Bold,
			Align: align.Center,
			Color: headerBgColor,
		}),
	)
	m.AddRow(5, line.NewCol(12))
	m.AddRow(6,
		text.NewCol(6, g.GetCompany(data), props.Text{Size: 8, Color: darkGrayColor}),
		text.NewCol(6, "Generated: "+g.FormatTimestamp(data.GeneratedAt),
			props.Text{Size: 8, Color: darkGrayColor, Align: align.Right}),
	)
	m.AddRow(8) // Отступ
}

func (g *PDFGenerator) addSection(m core.Maroto, title string) {
	m.AddRow(10,
		text.NewCol(12, title, props.Text{
			Size:  g.headerFontSize(),
			Style: fontstyle.Bold,
			Color: headerBgColor,
			Top:   3,
		}),
	)
	m.AddRow(2, line.NewCol(12, props.Line{Color: primaryColor}))
	m.AddRow(4)
}

func (g *PDFGenerator) headerText() props.Text {
	return props.Text{
		Size:  g.fontSize(),
		Style: fontstyle.Bold,
		Color: &props.Color{Red: 255, Green: 255, Blue: 255},
		Align: align.Center,
	}
}

func (g *PDFGenerator) cellText() props.Text {
	return props.Text{Size: g.fontSize(), Align: align.Center}
}

func (g *PDFGenerator) addSummaryTable(m core.Maroto, data *Data) {
	// Заголовок
	headers := []string{"Size", "Case", "Mean (s)", "StdDev (s)", "Min (s)", "Max (s)"}
	widths := []int{2, 2, 2, 2, 2, 2}
	cols := make([]core.Col, len(headers))
	for i, h := range headers {
		cols[i] = text.NewCol(widths[i], h, g.headerText()).WithStyle(tableHeaderStyle)
	}
	m.AddRow(8, cols...)

	cell := g.cellText()
	for _, s := range data.Summaries {
		m.AddRow(6,
			text.NewCol(2, s.Size, cell).WithStyle(tableCellStyle),
			text.NewCol(2, s.Case, cell).WithStyle(tableCellStyle),
			text.NewCol(2, g.FormatSeconds(s.Mean, 6), cell).WithStyle(tableCellStyle),
			text.NewCol(2, g.FormatSeconds(s.StdDev, 6), cell).WithStyle(tableCellStyle),
			text.NewCol(2, g.FormatSeconds(s.Min, 6), cell).WithStyle(tableCellStyle),
			text.NewCol(2, g.FormatSeconds(s.Max, 6), cell).WithStyle(tableCellStyle),
		)
	}
	m.AddRow(6)

	var reps int
	for _, s := range data.Summaries {
		reps += s.Repetitions
	}
	if reps > 0 {
		m.AddRow(6, text.NewCol(12,
			fmt.Sprintf("%d benchmarks, %d timed repetitions in total.", len(data.Summaries), reps),
			props.Text{Size: 8, Color: darkGrayColor}))
	}
}

func (g *PDFGenerator) addPivotTable(m core.Maroto, data *Data) {
	cases := g.Cases(data)
	if len(cases) == 0 {
		return
	}
	// Не больше 5 колонок со случаями
	if len(cases) > 5 {
		cases = cases[:5]
	}
	sizeCol := 12 - 2*len(cases)

	header := []core.Col{text.NewCol(sizeCol, "Size", g.headerText()).WithStyle(tableHeaderStyle)}
	for _, c := range cases {
		header = append(header, text.NewCol(2, c, g.headerText()).WithStyle(tableHeaderStyle))
	}
	m.AddRow(8, header...)

	cell := g.cellText()
	for _, size := range g.RowSizes(data) {
		row := []core.Col{text.NewCol(sizeCol, size, cell).WithStyle(tableCellStyle)}
		for _, c := range cases {
			v := "-"
			if s, ok := g.Lookup(data, size, c); ok {
				v = g.FormatSeconds(s.Mean, 6)
			}
			row = append(row, col.New(2).Add(text.New(v, cell)).WithStyle(tableCellStyle))
		}
		m.AddRow(6, row...)
	}
}

func (g *PDFGenerator) addFooter(m core.Maroto, data *Data) {
	m.AddRow(10)
	m.AddRow(2, line.NewCol(12, props.Line{Color: lightGrayColor}))
	m.AddRow(6,
		text.NewCol(12,
			fmt.Sprintf("Generated by %s | %s", g.GetCompany(data), g.FormatTimestamp(data.GeneratedAt)),
			props.Text{Size: 8, Color: darkGrayColor, Align: align.Center},
		),
	)
}
