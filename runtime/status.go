package runtime

import (
	"log/slog"

	"telechat/contract"
	"telechat/domain"
)

// StatusBroadcaster pushes consultation lifecycle snapshots to the two named
// participants of a conversation. The snapshot is fetched fresh from the
// consultation store on every call and never cached; offline participants
// are skipped silently, there is no queuing or offline delivery.
type StatusBroadcaster struct {
	log           *slog.Logger
	registry      *Registry
	consultations contract.ConsultationStore
}

func NewStatusBroadcaster(log *slog.Logger, registry *Registry,
	consultations contract.ConsultationStore) *StatusBroadcaster {
	return &StatusBroadcaster{log: log, registry: registry, consultations: consultations}
}

// Broadcast pushes the current snapshot of the conversation's consultation
// to its patient and doctor, whichever of them is connected.
func (b *StatusBroadcaster) Broadcast(conversationID string) {
	snapshot, err := b.consultations.GetByID(conversationID)
	if err != nil {
		b.log.Warn("Consultation snapshot unavailable",
			"conversation_id", conversationID, "error", err)
		return
	}

	frame := domain.OutboundFrame{
		Type:           domain.FrameConsultationUpdate,
		ConversationID: conversationID,
		Consultation:   &snapshot,
	}
	for _, userID := range []string{snapshot.PatientID, snapshot.DoctorID} {
		if userID == "" {
			continue
		}
		b.registry.Send(userID, frame)
	}
}
