package platform

type EventType int

const (
	EventErr EventType = iota
	EventCandle
)

type EventContainer struct {
	Type  EventType
	Event Event
	Error error
}

type Event struct {
	Candle Candle
}

// Candle is one closed kline as delivered by an exchange or a history file.
type Candle struct {
	Time        int64
	Open        Fixed
	High        Fixed
	Low         Fixed
	Close       Fixed
	Volume      Fixed
	TimeClose   int64
	VolumeQuote Fixed
	CountTrades int64
}

func MakeCandle(c Candle) EventContainer {
	return EventContainer{
		Type: EventCandle,
		Event: Event{
			Candle: c,
		},
	}
}

func MakeError(err error) EventContainer {
	return EventContainer{
		Type:  EventErr,
		Error: err,
	}
}
