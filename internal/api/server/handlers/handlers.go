package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/bz888/cafeteira/internal/api/server/client"
	"github.com/bz888/cafeteira/internal/api/server/device"
	"github.com/bz888/cafeteira/internal/logger"
)

const firmwareVersion = "1.0.0"

type Handler struct {
	assistant client.AssistantInterface
	device    device.Device
}

// ChatRequest is the body the widget posts to /chat.
type ChatRequest struct {
	ConversationID *string `json:"conversation_id"`
	Message        string  `json:"message"`
}

func NewHandler(assistant client.AssistantInterface, dev device.Device) *Handler {
	return &Handler{
		assistant: assistant,
		device:    dev,
	}
}

// DetectCommand finds an on/off order for the coffee machine. Both the
// verb and the word "cafeteira" must be present; "desligar" is checked
// first because it contains "ligar".
func DetectCommand(message string) (string, bool) {
	message = strings.ToLower(strings.TrimSpace(message))
	if !strings.Contains(message, "cafeteira") {
		return "", false
	}
	switch {
	case strings.Contains(message, device.CommandOff):
		return device.CommandOff, true
	case strings.Contains(message, device.CommandOn):
		return device.CommandOn, true
	default:
		return "", false
	}
}

func (h *Handler) ChatHandler(w http.ResponseWriter, r *http.Request) {
	localLogger := logger.NewLogger("ChatHandler")
	defer r.Body.Close()

	var chatReq ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&chatReq); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	message := strings.ToLower(strings.TrimSpace(chatReq.Message))
	if message == "" {
		writeError(w, http.StatusBadRequest, "message is required")
		return
	}
	localLogger.Info("Message received: ", message)

	assistantReq := &client.ChatMessageRequest{Query: message}
	if chatReq.ConversationID != nil {
		assistantReq.ConversationID = *chatReq.ConversationID
	}
	resp, err := h.assistant.Chat(r.Context(), assistantReq)
	if err != nil {
		localLogger.Error("Assistant request failed: ", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if command, ok := DetectCommand(message); ok {
		localLogger.Info("Command detected: ", command)
		if err := h.device.Send(r.Context(), command); err != nil {
			localLogger.Error("Failed to send command: ", err)
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) StatusHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.device.State())
}

type SystemInfo struct {
	CoffeeMaker device.State `json:"coffee_maker"`
	System      struct {
		MQTTStatus string `json:"mqtt_status"`
		LastUpdate string `json:"last_update"`
		Firmware   string `json:"firmware"`
	} `json:"system"`
}

func (h *Handler) SystemInfoHandler(w http.ResponseWriter, r *http.Request) {
	var info SystemInfo
	info.CoffeeMaker = h.device.State()
	info.System.MQTTStatus = "disconnected"
	if h.device.Connected() {
		info.System.MQTTStatus = "connected"
	}
	info.System.LastUpdate = time.Now().Format("2006-01-02 15:04:05")
	info.System.Firmware = firmwareVersion

	writeJSON(w, http.StatusOK, info)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.NewLogger("handlers").Error("Failed to encode response: ", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
