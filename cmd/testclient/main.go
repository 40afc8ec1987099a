package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"
)

// testclient exercises the webhook handshake and health endpoint of a
// running relay.
func main() {
	server := flag.String("server", "http://localhost:8080", "Relay base URL")
	token := flag.String("token", "", "Webhook verify token (WEBHOOK_SECRET)")
	flag.Parse()

	client := &http.Client{Timeout: 10 * time.Second}

	status, body := get(client, *server+"/health")
	log.Printf("Health: status=%d body=%q", status, body)

	challenge := fmt.Sprintf("%d", time.Now().UnixNano())
	q := url.Values{}
	q.Set("hub.mode", "subscribe")
	q.Set("hub.verify_token", *token)
	q.Set("hub.challenge", challenge)

	status, body = get(client, *server+"/webhook?"+q.Encode())
	if status != http.StatusOK || body != challenge {
		log.Fatalf("Verification failed: status=%d body=%q", status, body)
	}
	log.Printf("Verification succeeded: challenge=%s", challenge)

	q.Set("hub.verify_token", *token+"-wrong")
	status, _ = get(client, *server+"/webhook?"+q.Encode())
	if status != http.StatusForbidden {
		log.Fatalf("Expected 403 for wrong token, got %d", status)
	}
	log.Println("Wrong token rejected")
}

func get(client *http.Client, target string) (int, string) {
	resp, err := client.Get(target)
	if err != nil {
		log.Fatalf("GET %s failed: %v", target, err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, string(body)
}
