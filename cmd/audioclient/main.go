package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"io"
	"log"
	"net/http"
	"strconv"
	"time"

	"voice-relay-service/internal/service/whatsapp"
)

// audioclient posts a voice-note notification to a running relay, signed
// the way the platform signs it. Pair it with VOICE_TRANSCRIPTION_SERVICE=MOCK
// and a WHATSAPP_API_BASE that serves the media id.
func main() {
	server := flag.String("server", "http://localhost:8080", "Relay base URL")
	from := flag.String("from", "15550001234", "Sender phone number")
	mediaID := flag.String("media", "media-demo", "Audio media id")
	secret := flag.String("secret", "", "App secret (WHATSAPP_APP_SECRET); empty sends no signature")
	count := flag.Int("count", 1, "Number of audio messages in the payload")
	flag.Parse()

	now := strconv.FormatInt(time.Now().Unix(), 10)
	msgs := make([]whatsapp.Message, 0, *count)
	for i := 0; i < *count; i++ {
		msgs = append(msgs, whatsapp.Message{
			From:      *from,
			ID:        "wamid.demo-" + now + "-" + strconv.Itoa(i),
			Timestamp: now,
			Type:      whatsapp.MessageTypeAudio,
			Audio:     &whatsapp.Media{ID: *mediaID, MimeType: "audio/ogg; codecs=opus", Voice: true},
		})
	}

	payload := whatsapp.Payload{
		Object: "whatsapp_business_account",
		Entry: []whatsapp.Entry{{
			ID: "demo-entry",
			Changes: []whatsapp.Change{{
				Field: "messages",
				Value: &whatsapp.Value{MessagingProduct: "whatsapp", Messages: msgs},
			}},
		}},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		log.Fatalf("Failed to marshal payload: %v", err)
	}

	req, err := http.NewRequest(http.MethodPost, *server+"/webhook", bytes.NewReader(body))
	if err != nil {
		log.Fatalf("Failed to build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if *secret != "" {
		req.Header.Set(whatsapp.SignatureHeader, whatsapp.Sign(*secret, body))
	}

	log.Printf("Posting %d audio message(s): from=%s media=%s signed=%v", *count, *from, *mediaID, *secret != "")

	start := time.Now()
	resp, err := (&http.Client{Timeout: 5 * time.Minute}).Do(req)
	if err != nil {
		log.Fatalf("Request failed: %v", err)
	}
	defer resp.Body.Close()
	respBody, _ := io.ReadAll(resp.Body)

	log.Printf("Response: status=%d body=%q elapsed=%v", resp.StatusCode, respBody, time.Since(start).Round(time.Millisecond))
	if resp.StatusCode != http.StatusOK {
		log.Fatal("Webhook was not accepted")
	}
}
