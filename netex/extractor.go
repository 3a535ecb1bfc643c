// Package netex implements spec §4.2's XML extractor: one pass per entity
// kind over a document's descendants, selecting elements by local tag name
// (so a NeTEx namespace prefix never matters) and coercing free-form text
// into the packed model types.
package netex

import (
	"bytes"
	"fmt"
	"io"

	"github.com/antchfx/xmlquery"

	"github.com/theoremus-urban-solutions/netex-graph/intern"
	"github.com/theoremus-urban-solutions/netex-graph/model"
)

// Extract parses one NeTEx XML document and returns its typed record.
// Per spec §4.2, a numeric coercion failure (longitude/latitude, boolean)
// fails the whole document; an empty record on I/O failure is acceptable
// and must not abort the pipeline — the caller decides whether to treat an
// error here as fatal or as a dropped document.
func Extract(r io.Reader) (model.NetexData, error) {
	doc, err := xmlquery.Parse(r)
	if err != nil {
		return model.NetexData{}, fmt.Errorf("parse xml: %w", err)
	}

	var data model.NetexData

	stops, err := extractScheduledStopPoints(doc)
	if err != nil {
		return model.NetexData{}, err
	}
	data.ScheduledStopPoints = stops

	data.ServiceJourneyPatterns = extractServiceJourneyPatterns(doc)
	data.ServiceJourneys = extractServiceJourneys(doc)
	data.OperatingPeriods = extractOperatingPeriods(doc)

	dayTypeAssignments, err := extractDayTypeAssignments(doc)
	if err != nil {
		return model.NetexData{}, err
	}
	data.DayTypeAssignments = dayTypeAssignments

	lines, err := extractLines(doc)
	if err != nil {
		return model.NetexData{}, err
	}
	data.Lines = lines

	data.Authorities = extractAuthorities(doc)

	return data, nil
}

// ExtractBytes is a convenience wrapper for callers that already hold the
// whole document in memory (the common case once the archive reader has
// decompressed one member into a pooled buffer).
func ExtractBytes(buf []byte) (model.NetexData, error) {
	return Extract(bytes.NewReader(buf))
}

func findByLocalName(doc *xmlquery.Node, name string) []*xmlquery.Node {
	expr := fmt.Sprintf("//*[local-name()='%s']", name)
	return xmlquery.Find(doc, expr)
}

func firstByLocalName(node *xmlquery.Node, name string) *xmlquery.Node {
	expr := fmt.Sprintf(".//*[local-name()='%s']", name)
	return xmlquery.FindOne(node, expr)
}

func childrenByLocalName(node *xmlquery.Node, name string) []*xmlquery.Node {
	expr := fmt.Sprintf(".//*[local-name()='%s']", name)
	return xmlquery.Find(node, expr)
}

func attrOrEmpty(node *xmlquery.Node, name string) string {
	if node == nil {
		return ""
	}
	return node.SelectAttr(name)
}

func textOrEmpty(node *xmlquery.Node) string {
	if node == nil {
		return ""
	}
	return node.InnerText()
}

func extractScheduledStopPoints(doc *xmlquery.Node) ([]model.ScheduledStopPoint, error) {
	nodes := findByLocalName(doc, "ScheduledStopPoint")
	result := make([]model.ScheduledStopPoint, 0, len(nodes))
	for _, n := range nodes {
		stop := model.ScheduledStopPoint{ID: intern.Handle(attrOrEmpty(n, "id"))}

		shortName := firstByLocalName(n, "ShortName")
		if shortName == nil {
			shortName = firstByLocalName(n, "Name")
		}
		stop.ShortName = stripQuotes(textOrEmpty(shortName))

		if lonNode := firstByLocalName(n, "Longitude"); lonNode != nil {
			v, err := parseFloat32(textOrEmpty(lonNode))
			if err != nil {
				return nil, fmt.Errorf("ScheduledStopPoint %s: longitude: %w", stop.ShortName, err)
			}
			stop.Long = clamp32(v, -180, 180)
		}
		if latNode := firstByLocalName(n, "Latitude"); latNode != nil {
			v, err := parseFloat32(textOrEmpty(latNode))
			if err != nil {
				return nil, fmt.Errorf("ScheduledStopPoint %s: latitude: %w", stop.ShortName, err)
			}
			stop.Lat = clamp32(v, -90, 90)
		}
		result = append(result, stop)
	}
	return result, nil
}

func extractServiceJourneyPatterns(doc *xmlquery.Node) []model.ServiceJourneyPattern {
	nodes := findByLocalName(doc, "ServiceJourneyPattern")
	result := make([]model.ServiceJourneyPattern, 0, len(nodes))
	for _, n := range nodes {
		pattern := model.ServiceJourneyPattern{ID: intern.Handle(attrOrEmpty(n, "id"))}

		if lineRef := firstByLocalName(n, "LineRef"); lineRef != nil {
			pattern.Line = intern.Handle(attrOrEmpty(lineRef, "ref"))
		}

		for _, sp := range childrenByLocalName(n, "StopPointInJourneyPattern") {
			stop := model.StopPointInJourneyPattern{ID: intern.Handle(attrOrEmpty(sp, "id"))}
			if ref := firstByLocalName(sp, "ScheduledStopPointRef"); ref != nil {
				stop.ScheduledStopPoint = intern.Handle(attrOrEmpty(ref, "ref"))
			}
			pattern.Stops = append(pattern.Stops, stop)
		}
		result = append(result, pattern)
	}
	return result
}

func extractServiceJourneys(doc *xmlquery.Node) []model.ServiceJourney {
	nodes := findByLocalName(doc, "ServiceJourney")
	result := make([]model.ServiceJourney, 0, len(nodes))
	for _, n := range nodes {
		journey := model.ServiceJourney{}

		if ref := firstByLocalName(n, "DayTypeRef"); ref != nil {
			journey.DayType = intern.Handle(attrOrEmpty(ref, "ref"))
		}
		if mode := firstByLocalName(n, "TransportMode"); mode != nil {
			journey.TransportMode = textOrEmpty(mode)
		}
		if ref := firstByLocalName(n, "ServiceJourneyPatternRef"); ref != nil {
			journey.PatternRef = intern.Handle(attrOrEmpty(ref, "ref"))
		}

		passingTimesNode := firstByLocalName(n, "passingTimes")
		if passingTimesNode == nil {
			passingTimesNode = n
		}
		for _, tpt := range childrenByLocalName(passingTimesNode, "TimetabledPassingTime") {
			entry := model.TimetabledPassingTime{}
			if ref := firstByLocalName(tpt, "StopPointInJourneyPatternRef"); ref != nil {
				entry.StopPointInJourneyPattern = intern.Handle(attrOrEmpty(ref, "ref"))
			}
			if arr := firstByLocalName(tpt, "ArrivalTime"); arr != nil {
				entry.Arrival = ParseMinutes(textOrEmpty(arr))
			}
			if dep := firstByLocalName(tpt, "DepartureTime"); dep != nil {
				entry.Departure = ParseMinutes(textOrEmpty(dep))
			}
			journey.PassingTimes = append(journey.PassingTimes, entry)
		}
		result = append(result, journey)
	}
	return result
}

func extractOperatingPeriods(doc *xmlquery.Node) []model.UicOperatingPeriod {
	nodes := findByLocalName(doc, "UicOperatingPeriod")
	result := make([]model.UicOperatingPeriod, 0, len(nodes))
	for _, n := range nodes {
		period := model.UicOperatingPeriod{ID: intern.Handle(attrOrEmpty(n, "id"))}
		if from := firstByLocalName(n, "FromDate"); from != nil {
			period.From = ParseDate(textOrEmpty(from))
		}
		if to := firstByLocalName(n, "ToDate"); to != nil {
			period.To = ParseDate(textOrEmpty(to))
		}
		if bits := firstByLocalName(n, "ValidDayBits"); bits != nil {
			period.ValidDayBits = ParseDayBits(textOrEmpty(bits))
		}
		result = append(result, period)
	}
	return result
}

func extractDayTypeAssignments(doc *xmlquery.Node) ([]model.DayTypeAssignment, error) {
	nodes := findByLocalName(doc, "DayTypeAssignment")
	result := make([]model.DayTypeAssignment, 0, len(nodes))
	for _, n := range nodes {
		assignment := model.DayTypeAssignment{}
		if ref := firstByLocalName(n, "OperatingPeriodRef"); ref != nil {
			assignment.OperatingPeriod = intern.Handle(attrOrEmpty(ref, "ref"))
		}
		if ref := firstByLocalName(n, "DayTypeRef"); ref != nil {
			assignment.DayType = intern.Handle(attrOrEmpty(ref, "ref"))
		}
		if avail := firstByLocalName(n, "isAvailable"); avail != nil {
			v, err := parseBool(textOrEmpty(avail))
			if err != nil {
				return nil, fmt.Errorf("DayTypeAssignment: isAvailable: %w", err)
			}
			assignment.IsAvailable = v
		}
		result = append(result, assignment)
	}
	return result, nil
}

func extractLines(doc *xmlquery.Node) ([]model.Line, error) {
	nodes := findByLocalName(doc, "Line")
	result := make([]model.Line, 0, len(nodes))
	for _, n := range nodes {
		line := model.Line{ID: intern.Handle(attrOrEmpty(n, "id"))}
		if sn := firstByLocalName(n, "ShortName"); sn != nil {
			line.ShortName = textOrEmpty(sn)
		}
		if ref := firstByLocalName(n, "AuthorityRef"); ref != nil {
			line.Authority = intern.Handle(attrOrEmpty(ref, "ref"))
		}
		result = append(result, line)
	}
	return result, nil
}

func extractAuthorities(doc *xmlquery.Node) []model.Authority {
	nodes := findByLocalName(doc, "Authority")
	result := make([]model.Authority, 0, len(nodes))
	for _, n := range nodes {
		authority := model.Authority{ID: intern.Handle(attrOrEmpty(n, "id"))}
		if sn := firstByLocalName(n, "ShortName"); sn != nil {
			authority.ShortName = textOrEmpty(sn)
		}
		result = append(result, authority)
	}
	return result
}
