package email

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/studioware/backoffice/internal/domain/lifecycle"
	"github.com/studioware/backoffice/internal/repository"
)

type stubTransport struct {
	err  error
	sent []Message
}

func (t *stubTransport) Send(ctx context.Context, msg Message) error {
	t.sent = append(t.sent, msg)
	return t.err
}

type stubAudit struct {
	err     error
	entries []repository.EmailLog
}

func (a *stubAudit) Create(ctx context.Context, entry *repository.EmailLog) error {
	a.entries = append(a.entries, *entry)
	return a.err
}

func newTestSender(transport *stubTransport, audit *stubAudit) *Sender {
	return NewSender(transport, NewRenderer("Studioware"), audit, zap.NewNop())
}

func TestSendDocumentAdvancesDraftToSent(t *testing.T) {
	transport := &stubTransport{}
	audit := &stubAudit{}
	sender := newTestSender(transport, audit)

	doc := renderedDocument()
	doc.Status = lifecycle.StateDraft

	err := sender.SendDocument(context.Background(), doc, "")
	require.NoError(t, err)
	assert.Equal(t, lifecycle.StateSent, doc.Status)

	// default recipient is the attached customer
	require.Len(t, transport.sent, 1)
	assert.Equal(t, "accounts@acme.example", transport.sent[0].To)
	assert.Equal(t, "Invoice 15/03/2024-007 from Studioware", transport.sent[0].Subject)

	require.Len(t, audit.entries, 1)
	assert.Equal(t, "sent", audit.entries[0].Status)
	assert.Equal(t, "doc-1", audit.entries[0].DocumentID)
	assert.NotEmpty(t, audit.entries[0].Content)
}

func TestSendDocumentLeavesNonDraftStatus(t *testing.T) {
	sender := newTestSender(&stubTransport{}, &stubAudit{})

	doc := renderedDocument()
	doc.Status = lifecycle.StatePaid

	require.NoError(t, sender.SendDocument(context.Background(), doc, ""))
	assert.Equal(t, lifecycle.StatePaid, doc.Status)
}

func TestSendDocumentFailureKeepsDraft(t *testing.T) {
	transport := &stubTransport{err: errors.New("smtp unreachable")}
	audit := &stubAudit{}
	sender := newTestSender(transport, audit)

	doc := renderedDocument()
	doc.Status = lifecycle.StateDraft

	err := sender.SendDocument(context.Background(), doc, "")
	require.Error(t, err)
	assert.Equal(t, lifecycle.StateDraft, doc.Status)

	// failed attempts are still audited
	require.Len(t, audit.entries, 1)
	assert.Equal(t, "failed", audit.entries[0].Status)
	assert.Contains(t, audit.entries[0].Error, "smtp unreachable")
}

func TestSendDocumentExplicitRecipient(t *testing.T) {
	transport := &stubTransport{}
	sender := newTestSender(transport, &stubAudit{})

	doc := renderedDocument()
	require.NoError(t, sender.SendDocument(context.Background(), doc, "billing@other.example"))
	require.Len(t, transport.sent, 1)
	assert.Equal(t, "billing@other.example", transport.sent[0].To)
}

func TestSendDocumentAuditFailureDoesNotMaskResult(t *testing.T) {
	sender := newTestSender(&stubTransport{}, &stubAudit{err: errors.New("log table missing")})

	doc := renderedDocument()
	doc.Status = lifecycle.StateDraft
	require.NoError(t, sender.SendDocument(context.Background(), doc, ""))
	assert.Equal(t, lifecycle.StateSent, doc.Status)
}

func TestSendDocumentAttachments(t *testing.T) {
	transport := &stubTransport{}
	sender := newTestSender(transport, &stubAudit{})

	doc := renderedDocument()
	att := Attachment{Filename: "invoice-15-03-2024-007.pdf", Content: []byte("%PDF-1.4")}
	require.NoError(t, sender.SendDocument(context.Background(), doc, "", att))

	require.Len(t, transport.sent, 1)
	require.Len(t, transport.sent[0].Attachments, 1)
	assert.Equal(t, "invoice-15-03-2024-007.pdf", transport.sent[0].Attachments[0].Filename)
}
