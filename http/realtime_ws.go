package http

import (
	"bytes"
	"net/http"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"stockpredictor/monitoring"
)

// handlePredictWS answers each text frame (a JSON record) with one prediction
// reply. Frames on a connection are handled in order, one at a time. A bad
// frame gets an error reply and the connection stays open.
func (h *Handlers) handlePredictWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()
	if h.maxBody > 0 {
		conn.SetReadLimit(h.maxBody)
	}

	requestID := GetRequestID(r.Context())
	printer := printerFor(r)
	h.logger.Debug("websocket client connected", zap.String("request_id", requestID))

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.logger.Warn("websocket read failed", zap.String("request_id", requestID), zap.Error(err))
			}
			return
		}

		var reply predictResponse
		record, err := decodeRecord(bytes.NewReader(payload))
		if err != nil {
			h.metrics.RecordPrediction(channelWebSocket, monitoring.OutcomeInvalidInput, 0)
			reply = predictResponse{Error: "invalid record: " + err.Error()}
		} else {
			_, reply = h.predict(r.Context(), channelWebSocket, record, printer)
		}

		if err := conn.WriteJSON(reply); err != nil {
			h.logger.Warn("websocket write failed", zap.String("request_id", requestID), zap.Error(err))
			return
		}
	}
}
