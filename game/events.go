package game

import (
	"context"

	"github.com/nikfortgames/beamroom/shared/messages"
)

// Queued forwards transport callbacks to a Session through its loop. Handlers
// registered with the transport run on its goroutines; the session only ever
// sees them on the loop.
type Queued struct {
	ctx     context.Context
	loop    *Loop
	session *Session
}

// NewQueued returns an adapter for loop. Bind must be called before the
// transport delivers its first event.
func NewQueued(ctx context.Context, loop *Loop) *Queued {
	return &Queued{ctx: ctx, loop: loop}
}

func (q *Queued) Bind(s *Session) {
	q.session = s
}

func (q *Queued) post(fn func()) {
	q.loop.Post(q.ctx, fn)
}

func (q *Queued) OnConnectedToMaster(participantID string) {
	q.post(func() { q.session.OnConnectedToMaster(participantID) })
}

func (q *Queued) OnJoinRandomFailed(code int16, message string) {
	q.post(func() { q.session.OnJoinRandomFailed(code, message) })
}

func (q *Queued) OnJoinRoomFailed(code int16, message string) {
	q.post(func() { q.session.OnJoinRoomFailed(code, message) })
}

func (q *Queued) OnCreateRoomFailed(code int16, message string) {
	q.post(func() { q.session.OnCreateRoomFailed(code, message) })
}

func (q *Queued) OnJoinedRoom(msg messages.JoinedRoom) {
	q.post(func() { q.session.OnJoinedRoom(msg) })
}

func (q *Queued) OnParticipantJoined(p messages.ParticipantInfo) {
	q.post(func() { q.session.OnParticipantJoined(p) })
}

func (q *Queued) OnParticipantLeft(participantID string) {
	q.post(func() { q.session.OnParticipantLeft(participantID) })
}

func (q *Queued) OnSnapshot(msg messages.EntitySnapshot) {
	q.post(func() { q.session.OnSnapshot(msg) })
}

func (q *Queued) OnLeftRoom() {
	q.post(q.session.OnLeftRoom)
}

func (q *Queued) OnDisconnected(cause error) {
	q.post(func() { q.session.OnDisconnected(cause) })
}
