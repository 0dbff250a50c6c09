package events

import (
	"encoding/json"
	"errors"

	"github.com/r3labs/sse/v2"
)

const PlaybackStream = "playback"

var Server *sse.Server

func Init() {
	server := sse.New()
	server.AutoReplay = false
	server.CreateStream(PlaybackStream)
	Server = server
}

// Publish encodes payload as JSON and sends it to every subscriber of stream.
func Publish(stream string, payload any) error {
	if Server == nil {
		return errors.New("event server has not been initialised")
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	Server.Publish(stream, &sse.Event{Data: data})
	return nil
}
