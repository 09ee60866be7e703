package server

import (
	"encoding/json"
	"net/http"
)

func (s *Server) handleOutgoing(w http.ResponseWriter, r *http.Request) {
	var req outgoingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)

		return
	}

	s.fold(req.entitiesPayload)

	blocked := s.gateway.InterceptOutgoing(r.Context(), req.OwnerID, req.ChatID, req.Draft.toDomain())
	s.writeVerdict(w, blocked)
}

func (s *Server) handleForward(w http.ResponseWriter, r *http.Request) {
	var req forwardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)

		return
	}

	s.fold(req.entitiesPayload)

	blocked := s.gateway.InterceptForward(r.Context(), req.OwnerID, req.ToChatID, req.FromChatID, toMessages(req.Messages))
	s.writeVerdict(w, blocked)
}

func (s *Server) handleDelivered(w http.ResponseWriter, r *http.Request) {
	var req deliveredRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)

		return
	}

	s.fold(req.entitiesPayload)

	// The gateway runs the submission as its own task; the API surfaces the
	// completion signal so callers that care can react to the verdict.
	blocked := <-s.gateway.RecordDelivered(r.Context(), req.OwnerID, req.Message.toDomain())
	s.writeVerdict(w, blocked)
}

func (s *Server) handlePolicy(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(s.state.Current()); err != nil {
		s.logger.Warn().Err(err).Msg("failed to encode policy response")
	}
}

// fold merges request-supplied entities into the directory, mirroring the
// host client's loaded state.
func (s *Server) fold(entities entitiesPayload) {
	for _, user := range entities.Users {
		s.directory.PutUser(user.toDomain())
	}

	for _, chat := range entities.Chats {
		s.directory.PutChat(chat.toDomain())
	}
}

func (s *Server) writeVerdict(w http.ResponseWriter, blocked bool) {
	resp := verdictResponse{Block: blocked}
	if blocked {
		resp.BlockMessage = s.state.Current().BlockMessage
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.logger.Warn().Err(err).Msg("failed to encode verdict response")
	}
}
