package chart

import (
	"fmt"
	"strings"

	"github.com/secmon-lab/suistat/pkg/domain/model"
)

const (
	tickSize   = 6
	tickText   = 9
	axisColor  = "currentColor"
	fontFamily = "sans-serif"
	fontSize   = 10
)

var xmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
)

func escapeXML(s string) string {
	return xmlEscaper.Replace(s)
}

// SVG serializes a scene as a standalone SVG document
func SVG(scene *model.Scene) string {
	var sb strings.Builder
	n := formatNumber

	sb.WriteString(fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" width="%s" height="%s" viewBox="0 0 %s %s">`,
		n(scene.OuterWidth()), n(scene.OuterHeight()), n(scene.OuterWidth()), n(scene.OuterHeight())))
	sb.WriteString(fmt.Sprintf(`<g transform="translate(%s,0)">`, n(scene.Margins.Left)))

	writeXAxis(&sb, scene)
	writeYAxis(&sb, scene)

	sb.WriteString(`<defs>`)
	sb.WriteString(fmt.Sprintf(`<linearGradient id="%s" x1="0%%" y1="0%%" x2="100%%" y2="0%%">`, escapeXML(scene.Gradient.ID)))
	for _, stop := range scene.Gradient.Stops {
		sb.WriteString(fmt.Sprintf(`<stop offset="%s" stop-color="%s"/>`, escapeXML(stop.Offset), escapeXML(stop.Color)))
	}
	sb.WriteString(`</linearGradient></defs>`)

	if len(scene.Path) > 0 {
		var d strings.Builder
		for i, p := range scene.Path {
			cmd := "L"
			if i == 0 {
				cmd = "M"
			}
			d.WriteString(fmt.Sprintf("%s%s,%s", cmd, n(p.X), n(p.Y)))
		}
		sb.WriteString(fmt.Sprintf(`<path class="line" fill="none" stroke="url(#%s)" stroke-width="%s" d="%s"/>`,
			escapeXML(scene.Gradient.ID), n(scene.StrokeWidth), d.String()))
	}

	for _, b := range scene.Bars {
		sb.WriteString(fmt.Sprintf(`<rect class="bar" x="%s" y="%s" width="%s" height="%s" fill="url(#%s)"><title>%s: %d</title></rect>`,
			n(b.X), n(b.Y), n(b.Width), n(b.Height), escapeXML(scene.Gradient.ID), escapeXML(b.Key), b.Value))
	}

	sb.WriteString(fmt.Sprintf(`<text class="x label" x="%s" y="%s" text-anchor="middle">%s</text>`,
		n(scene.XLabel.X), n(scene.XLabel.Y), escapeXML(scene.XLabel.Text)))
	sb.WriteString(fmt.Sprintf(`<text class="y label" x="%s" y="%s" transform="rotate(%s)" text-anchor="middle">%s</text>`,
		n(scene.YLabel.X), n(scene.YLabel.Y), n(scene.YLabel.Rotation), escapeXML(scene.YLabel.Text)))

	sb.WriteString(`</g></svg>`)
	return sb.String()
}

func writeXAxis(sb *strings.Builder, scene *model.Scene) {
	n := formatNumber
	sb.WriteString(fmt.Sprintf(`<g class="x axis" transform="translate(0,%s)" fill="none" font-size="%d" font-family="%s" text-anchor="middle">`,
		n(scene.Size.Height), fontSize, fontFamily))
	sb.WriteString(fmt.Sprintf(`<path class="domain" stroke="%s" d="M0,%dV0H%sV%d"/>`,
		axisColor, tickSize, n(scene.Size.Width), tickSize))
	for _, t := range scene.XAxis.Ticks {
		sb.WriteString(fmt.Sprintf(`<g class="tick" transform="translate(%s,0)"><line stroke="%s" y2="%d"/><text fill="%s" y="%d" dy="0.71em">%s</text></g>`,
			n(t.Position), axisColor, tickSize, axisColor, tickText, escapeXML(t.Label)))
	}
	sb.WriteString(`</g>`)
}

func writeYAxis(sb *strings.Builder, scene *model.Scene) {
	n := formatNumber
	sb.WriteString(fmt.Sprintf(`<g class="y axis" fill="none" font-size="%d" font-family="%s" text-anchor="end">`,
		fontSize, fontFamily))
	sb.WriteString(fmt.Sprintf(`<path class="domain" stroke="%s" d="M-%d,%sH0V0H-%d"/>`,
		axisColor, tickSize, n(scene.Size.Height), tickSize))
	for _, t := range scene.YAxis.Ticks {
		sb.WriteString(fmt.Sprintf(`<g class="tick" transform="translate(0,%s)"><line stroke="%s" x2="-%d"/><text fill="%s" x="-%d" dy="0.32em">%s</text></g>`,
			n(t.Position), axisColor, tickSize, axisColor, tickText, escapeXML(t.Label)))
	}
	sb.WriteString(`</g>`)
}
