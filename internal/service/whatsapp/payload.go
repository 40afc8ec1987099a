// Package whatsapp talks to the WhatsApp Business Cloud API: it decodes
// webhook payloads, verifies their signatures, downloads media and sends
// text replies.
package whatsapp

import (
	"encoding/json"
	"errors"
)

// MessageTypeAudio is the webhook type tag for voice notes and audio files.
const MessageTypeAudio = "audio"

// Payload is the webhook notification envelope. Every level is optional.
type Payload struct {
	Object string  `json:"object"`
	Entry  []Entry `json:"entry"`

	// Dropped counts elements discarded for having the wrong shape.
	Dropped int `json:"-"`
}

type Entry struct {
	ID      string   `json:"id"`
	Changes []Change `json:"changes"`
}

type Change struct {
	Field string `json:"field"`
	Value *Value `json:"value"`
}

type Value struct {
	MessagingProduct string    `json:"messaging_product"`
	Metadata         Metadata  `json:"metadata"`
	Messages         []Message `json:"messages"`
}

type Metadata struct {
	DisplayPhoneNumber string `json:"display_phone_number"`
	PhoneNumberID      string `json:"phone_number_id"`
}

// Message is a single inbound message. Audio is set only for audio messages.
type Message struct {
	From      string `json:"from"`
	ID        string `json:"id"`
	Timestamp string `json:"timestamp"`
	Type      string `json:"type"`
	Audio     *Media `json:"audio,omitempty"`
}

// Media is a media reference: an opaque id to be resolved through the Graph API.
type Media struct {
	ID       string `json:"id"`
	MimeType string `json:"mime_type"`
	Voice    bool   `json:"voice"`
}

// ErrMalformedPayload is returned for bodies that are not JSON at all.
var ErrMalformedPayload = errors.New("webhook payload is not valid JSON")

// ParsePayload decodes a webhook body. Only a body that does not parse as
// JSON is an error. Levels of the wrong shape are treated as missing, and
// messages whose from, id or type are not strings are dropped without
// affecting their siblings; Dropped counts them.
func ParsePayload(body []byte) (*Payload, error) {
	if !json.Valid(body) {
		return nil, ErrMalformedPayload
	}

	var d payloadDecoder
	var top struct {
		Object json.RawMessage `json:"object"`
		Entry  json.RawMessage `json:"entry"`
	}
	p := &Payload{}
	if err := json.Unmarshal(body, &top); err != nil {
		return p, nil
	}
	p.Object, _ = stringField(top.Object)
	for _, raw := range d.elements(top.Entry) {
		if entry, ok := d.entry(raw); ok {
			p.Entry = append(p.Entry, entry)
		}
	}
	p.Dropped = d.dropped
	return p, nil
}

type payloadDecoder struct {
	dropped int
}

// elements splits a JSON array into raw elements. Absent, null and
// non-array values have none.
func (d *payloadDecoder) elements(raw json.RawMessage) []json.RawMessage {
	if len(raw) == 0 {
		return nil
	}
	var out []json.RawMessage
	if err := json.Unmarshal(raw, &out); err != nil {
		d.dropped++
		return nil
	}
	return out
}

func (d *payloadDecoder) entry(raw json.RawMessage) (Entry, bool) {
	var e struct {
		ID      json.RawMessage `json:"id"`
		Changes json.RawMessage `json:"changes"`
	}
	if err := json.Unmarshal(raw, &e); err != nil {
		d.dropped++
		return Entry{}, false
	}
	out := Entry{}
	out.ID, _ = stringField(e.ID)
	for _, rc := range d.elements(e.Changes) {
		if change, ok := d.change(rc); ok {
			out.Changes = append(out.Changes, change)
		}
	}
	return out, true
}

func (d *payloadDecoder) change(raw json.RawMessage) (Change, bool) {
	var c struct {
		Field json.RawMessage `json:"field"`
		Value json.RawMessage `json:"value"`
	}
	if err := json.Unmarshal(raw, &c); err != nil {
		d.dropped++
		return Change{}, false
	}
	out := Change{}
	out.Field, _ = stringField(c.Field)
	out.Value = d.value(c.Value)
	return out, true
}

func (d *payloadDecoder) value(raw json.RawMessage) *Value {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	var v struct {
		MessagingProduct json.RawMessage `json:"messaging_product"`
		Metadata         json.RawMessage `json:"metadata"`
		Messages         json.RawMessage `json:"messages"`
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		d.dropped++
		return nil
	}
	out := &Value{}
	out.MessagingProduct, _ = stringField(v.MessagingProduct)
	out.Metadata = decodeMetadata(v.Metadata)
	for _, rm := range d.elements(v.Messages) {
		if msg, ok := d.message(rm); ok {
			out.Messages = append(out.Messages, msg)
		}
	}
	return out
}

func decodeMetadata(raw json.RawMessage) Metadata {
	var m struct {
		DisplayPhoneNumber json.RawMessage `json:"display_phone_number"`
		PhoneNumberID      json.RawMessage `json:"phone_number_id"`
	}
	if len(raw) == 0 || json.Unmarshal(raw, &m) != nil {
		return Metadata{}
	}
	out := Metadata{}
	out.DisplayPhoneNumber, _ = stringField(m.DisplayPhoneNumber)
	out.PhoneNumberID, _ = stringField(m.PhoneNumberID)
	return out
}

// message keeps a message only when from, id and type are strings (or
// absent). A mistyped audio object leaves Audio nil.
func (d *payloadDecoder) message(raw json.RawMessage) (Message, bool) {
	var m struct {
		From      json.RawMessage `json:"from"`
		ID        json.RawMessage `json:"id"`
		Timestamp json.RawMessage `json:"timestamp"`
		Type      json.RawMessage `json:"type"`
		Audio     json.RawMessage `json:"audio"`
	}
	if err := json.Unmarshal(raw, &m); err != nil {
		d.dropped++
		return Message{}, false
	}

	var out Message
	from, okFrom := stringField(m.From)
	id, okID := stringField(m.ID)
	typ, okType := stringField(m.Type)
	if !okFrom || !okID || !okType {
		d.dropped++
		return Message{}, false
	}
	out.From, out.ID, out.Type = from, id, typ
	out.Timestamp, _ = stringField(m.Timestamp)
	out.Audio = decodeMedia(m.Audio)
	return out, true
}

func decodeMedia(raw json.RawMessage) *Media {
	if len(raw) == 0 {
		return nil
	}
	var m struct {
		ID       json.RawMessage `json:"id"`
		MimeType json.RawMessage `json:"mime_type"`
		Voice    json.RawMessage `json:"voice"`
	}
	if json.Unmarshal(raw, &m) != nil || string(raw) == "null" {
		return nil
	}
	id, ok := stringField(m.ID)
	if !ok || id == "" {
		return nil
	}
	out := &Media{ID: id}
	out.MimeType, _ = stringField(m.MimeType)
	_ = json.Unmarshal(m.Voice, &out.Voice)
	return out
}

// stringField decodes an optional string. Absent and null yield "" and
// true; any other non-string yields false.
func stringField(raw json.RawMessage) (string, bool) {
	if len(raw) == 0 {
		return "", true
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}

// Messages flattens entry -> changes -> value -> messages, skipping any
// missing level.
func (p *Payload) Messages() []Message {
	if p == nil {
		return nil
	}
	var out []Message
	for _, entry := range p.Entry {
		for _, change := range entry.Changes {
			if change.Value == nil {
				continue
			}
			out = append(out, change.Value.Messages...)
		}
	}
	return out
}

// MediaID returns the audio reference of an audio message, or "".
func (m Message) MediaID() string {
	if m.Type != MessageTypeAudio || m.Audio == nil {
		return ""
	}
	return m.Audio.ID
}
