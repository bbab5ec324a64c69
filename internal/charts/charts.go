// Package charts renders the clinic charts as self-contained ECharts HTML.
package charts

import (
	"bytes"
	"io"
	"sort"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"asthma-care-server/internal/clinical"
	"asthma-care-server/internal/models"
)

var zoneColors = map[clinical.Zone]string{
	clinical.ZoneGreen:  "green",
	clinical.ZoneOrange: "orange",
	clinical.ZoneRed:    "red",
}

var zoneOrder = []clinical.Zone{clinical.ZoneGreen, clinical.ZoneOrange, clinical.ZoneRed}

var controlColors = map[models.ControlLevel]string{
	models.Controlled:       "#28a745",
	models.PartlyControlled: "#ffc107",
	models.Uncontrolled:     "#dc3545",
}

type renderer interface {
	Render(w io.Writer) error
}

func render(r renderer) (string, error) {
	var buf bytes.Buffer
	if err := r.Render(&buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// PEFRTrend plots measured PEFR over time with points coloured by zone and
// dashed lines at 80 % and 50 % of the reference value. Visits without a
// reading are left out.
func PEFRTrend(visits []models.Visit, reference float64) (string, error) {
	var points []models.Visit
	for _, v := range visits {
		if v.HasPEFR() && !v.Date.IsZero() {
			points = append(points, v)
		}
	}
	sort.SliceStable(points, func(i, j int) bool { return points[i].Date.Before(points[j].Date) })

	line := charts.NewLine()
	if len(points) == 0 {
		line.SetGlobalOptions(charts.WithTitleOpts(opts.Title{Title: "ไม่มีข้อมูลกราฟ PEFR"}))
		return render(line)
	}

	ref := clinical.ReferencePEFR(reference, 0, points)
	xAxis := make([]string, 0, len(points))
	yData := make([]opts.LineData, 0, len(points))
	zoned := make(map[clinical.Zone][]opts.ScatterData, len(zoneOrder))
	for _, v := range points {
		xAxis = append(xAxis, v.Date.Format("02/01/2006"))
		yData = append(yData, opts.LineData{Value: v.PEFR})
		zone := clinical.PEFRZone(float64(v.PEFR), ref)
		for _, z := range zoneOrder {
			// "-" leaves a gap at this date in the other zones
			point := opts.ScatterData{Value: "-"}
			if z == zone {
				point = opts.ScatterData{Value: v.PEFR, SymbolSize: 10}
			}
			zoned[z] = append(zoned[z], point)
		}
	}

	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Height: "350px"}),
		charts.WithTitleOpts(opts.Title{Title: "PEFR (L/min)"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(false)}),
		charts.WithYAxisOpts(opts.YAxis{
			Name: "L/min",
			Min:  0,
			Max:  int(ref) + 150,
		}),
	)

	markLines := []interface{}{
		opts.MarkLineNameYAxisItem{Name: "80%", YAxis: ref * clinical.GreenZoneFraction},
		opts.MarkLineNameYAxisItem{Name: "50%", YAxis: ref * clinical.OrangeZoneFraction},
	}
	line.SetXAxis(xAxis).
		AddSeries("PEFR", yData).
		SetSeriesOptions(
			charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false)}),
			charts.WithLineStyleOpts(opts.LineStyle{Color: "gray"}),
			func(s *charts.SingleSeries) {
				s.MarkLines = &opts.MarkLines{
					Data: markLines,
					MarkLineStyle: opts.MarkLineStyle{
						Symbol: []string{"none", "none"},
						LineStyle: &opts.LineStyle{
							Color: "rgba(128, 128, 128, 0.6)",
							Type:  "dashed",
							Width: 1.5,
						},
					},
				}
			},
		)

	zonePoints := charts.NewScatter()
	for _, z := range zoneOrder {
		zonePoints.AddSeries(string(z), zoned[z], charts.WithItemStyleOpts(opts.ItemStyle{Color: zoneColors[z]}))
	}
	line.Overlap(zonePoints)
	return render(line)
}

// ControlDonut shows the share of each control level among latest visits.
func ControlDonut(tally []clinical.ControlCount) (string, error) {
	pie := charts.NewPie()
	pie.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "สัดส่วนการคุมอาการ (Visit ล่าสุด)"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)
	data := make([]opts.PieData, 0, len(tally))
	for _, c := range tally {
		d := opts.PieData{Name: string(c.Status), Value: c.Count}
		if color, ok := controlColors[c.Status]; ok {
			d.ItemStyle = &opts.ItemStyle{Color: color}
		}
		data = append(data, d)
	}
	pie.AddSeries("status", data,
		charts.WithPieChartOpts(opts.PieChart{Radius: []string{"40%", "65%"}}),
		charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Formatter: "{b}: {c}"}),
	)
	return render(pie)
}

// AgeHistogram draws the patient count per age bin.
func AgeHistogram(bins []clinical.AgeBin) (string, error) {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "การกระจายตัวของอายุผู้ป่วย"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "ช่วงอายุ (ปี)"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "จำนวนผู้ป่วย"}),
	)
	labels := make([]string, len(bins))
	data := make([]opts.BarData, len(bins))
	for i, b := range bins {
		labels[i] = b.Label
		data[i] = opts.BarData{Value: b.Count, ItemStyle: &opts.ItemStyle{Color: "#4c78a8"}}
	}
	bar.SetXAxis(labels).AddSeries("patients", data)
	return render(bar)
}

// MonthlyTrend draws visits per month.
func MonthlyTrend(months []clinical.MonthCount) (string, error) {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Height: "200px"}),
		charts.WithTitleOpts(opts.Title{Title: "แนวโน้มผู้รับบริการรายเดือน"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithYAxisOpts(opts.YAxis{Name: "จำนวน Visit"}),
	)
	labels := make([]string, len(months))
	data := make([]opts.LineData, len(months))
	for i, m := range months {
		labels[i] = m.Month
		data[i] = opts.LineData{Value: m.Count}
	}
	line.SetXAxis(labels).
		AddSeries("visits", data).
		SetSeriesOptions(charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(true)}))
	return render(line)
}
