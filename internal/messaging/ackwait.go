package messaging

import (
	"time"

	"github.com/fractalmind/teamchat-go/internal/store"
)

// waitForAck polls the ack index for messageID at a 1-second cadence until
// deadline, returning the ack record if it becomes visible. It performs one
// final read strictly after the deadline even if the poll loop already
// timed out — this "one more read" is load-bearing: acks made visible by
// another process writing the ack index in the narrow window after the
// last poll must still be observed.
func waitForAck(st *store.Store, messageID string, timeoutSeconds int) (*store.AckIndexEntry, error) {
	if timeoutSeconds < 1 {
		timeoutSeconds = 1
	}
	deadline := time.Now().Add(time.Duration(timeoutSeconds) * time.Second)

	for time.Now().Before(deadline) {
		entry, ok, err := st.GetAck(messageID)
		if err != nil {
			return nil, err
		}
		if ok {
			return &entry, nil
		}
		time.Sleep(1 * time.Second)
	}

	entry, ok, err := st.GetAck(messageID)
	if err != nil {
		return nil, err
	}
	if ok {
		return &entry, nil
	}
	return nil, nil
}
