package netex

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theoremus-urban-solutions/netex-graph/intern"
)

const sampleDocument = `<?xml version="1.0" encoding="UTF-8"?>
<PublicationDelivery xmlns="http://www.netex.org.uk/netex">
  <dataObjects>
    <CompositeFrame>
      <frames>
        <ResourceFrame>
          <authorities>
            <Authority id="AUT:1" version="1">
              <ShortName>Transit Authority</ShortName>
            </Authority>
          </authorities>
          <lines>
            <Line id="LIN:1" version="1">
              <ShortName>Line 1</ShortName>
              <AuthorityRef ref="AUT:1" />
            </Line>
          </lines>
        </ResourceFrame>
        <SiteFrame>
          <scheduledStopPoints>
            <ScheduledStopPoint id="SSP:1" version="1">
              <ShortName>"Central Station"</ShortName>
              <Longitude>13.40</Longitude>
              <Latitude>52.50</Latitude>
            </ScheduledStopPoint>
            <ScheduledStopPoint id="SSP:2" version="1">
              <ShortName>North Yard</ShortName>
              <Longitude>13.50</Longitude>
              <Latitude>52.60</Latitude>
            </ScheduledStopPoint>
          </scheduledStopPoints>
        </SiteFrame>
        <ServiceFrame>
          <journeyPatterns>
            <ServiceJourneyPattern id="PAT:1" version="1">
              <LineRef ref="LIN:1" />
              <pointsInSequence>
                <StopPointInJourneyPattern id="PAT:1:1" version="1">
                  <ScheduledStopPointRef ref="SSP:1" />
                </StopPointInJourneyPattern>
                <StopPointInJourneyPattern id="PAT:1:2" version="1">
                  <ScheduledStopPointRef ref="SSP:2" />
                </StopPointInJourneyPattern>
              </pointsInSequence>
            </ServiceJourneyPattern>
          </journeyPatterns>
        </ServiceFrame>
        <ServiceCalendarFrame>
          <operatingPeriods>
            <UicOperatingPeriod id="OP:1" version="1">
              <FromDate>2022-06-13T00:00:00</FromDate>
              <ToDate>2022-12-11T00:00:00</ToDate>
              <ValidDayBits>1111111</ValidDayBits>
            </UicOperatingPeriod>
          </operatingPeriods>
          <dayTypeAssignments>
            <DayTypeAssignment id="DTA:1" version="1">
              <OperatingPeriodRef ref="OP:1" />
              <DayTypeRef ref="DT:1" />
              <isAvailable>true</isAvailable>
            </DayTypeAssignment>
          </dayTypeAssignments>
        </ServiceCalendarFrame>
        <TimetableFrame>
          <vehicleJourneys>
            <ServiceJourney id="SJ:1" version="1">
              <DayTypeRef ref="DT:1" />
              <TransportMode>bus</TransportMode>
              <ServiceJourneyPatternRef ref="PAT:1" />
              <passingTimes>
                <TimetabledPassingTime id="SJ:1:1" version="1">
                  <StopPointInJourneyPatternRef ref="PAT:1:1" />
                  <DepartureTime>08:00:00</DepartureTime>
                </TimetabledPassingTime>
                <TimetabledPassingTime id="SJ:1:2" version="1">
                  <StopPointInJourneyPatternRef ref="PAT:1:2" />
                  <ArrivalTime>08:05:00</ArrivalTime>
                </TimetabledPassingTime>
              </passingTimes>
            </ServiceJourney>
          </vehicleJourneys>
        </TimetableFrame>
      </frames>
    </CompositeFrame>
  </dataObjects>
</PublicationDelivery>`

func TestExtractSingleJourneyTwoStops(t *testing.T) {
	data, err := Extract(strings.NewReader(sampleDocument))
	require.NoError(t, err)

	require.Len(t, data.ScheduledStopPoints, 2)
	assert.Equal(t, "Central Station", data.ScheduledStopPoints[0].ShortName)
	assert.Equal(t, intern.Handle("SSP:1"), data.ScheduledStopPoints[0].ID)
	assert.InDelta(t, 13.40, data.ScheduledStopPoints[0].Long, 1e-6)
	assert.InDelta(t, 52.50, data.ScheduledStopPoints[0].Lat, 1e-6)

	require.Len(t, data.ServiceJourneyPatterns, 1)
	pattern := data.ServiceJourneyPatterns[0]
	assert.Equal(t, intern.Handle("LIN:1"), pattern.Line)
	require.Len(t, pattern.Stops, 2)
	assert.Equal(t, intern.Handle("SSP:1"), pattern.Stops[0].ScheduledStopPoint)
	assert.Equal(t, intern.Handle("SSP:2"), pattern.Stops[1].ScheduledStopPoint)

	require.Len(t, data.ServiceJourneys, 1)
	journey := data.ServiceJourneys[0]
	assert.Equal(t, "bus", journey.TransportMode)
	assert.Equal(t, intern.Handle("DT:1"), journey.DayType)
	assert.Equal(t, intern.Handle("PAT:1"), journey.PatternRef)
	require.Len(t, journey.PassingTimes, 2)
	assert.Equal(t, uint16(480), journey.PassingTimes[0].Departure)
	assert.Equal(t, uint16(485), journey.PassingTimes[1].Arrival)

	require.Len(t, data.OperatingPeriods, 1)
	assert.Equal(t, uint32(220613), data.OperatingPeriods[0].From)
	assert.Equal(t, []byte{0x7F}, data.OperatingPeriods[0].ValidDayBits)

	require.Len(t, data.DayTypeAssignments, 1)
	assert.True(t, data.DayTypeAssignments[0].IsAvailable)

	require.Len(t, data.Lines, 1)
	assert.Equal(t, "Line 1", data.Lines[0].ShortName)

	require.Len(t, data.Authorities, 1)
	assert.Equal(t, "Transit Authority", data.Authorities[0].ShortName)
}

func TestExtractMalformedLongitudeFailsDocument(t *testing.T) {
	doc := `<root><ScheduledStopPoint id="S1"><ShortName>X</ShortName><Longitude>not-a-number</Longitude></ScheduledStopPoint></root>`
	_, err := Extract(strings.NewReader(doc))
	assert.Error(t, err)
}

func TestExtractBytesWrapsExtract(t *testing.T) {
	data, err := ExtractBytes([]byte(sampleDocument))
	require.NoError(t, err)
	assert.Len(t, data.ScheduledStopPoints, 2)
}
