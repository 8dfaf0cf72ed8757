package comments

import (
	"context"
	"fmt"
	"slices"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/CrestNiraj12/issuefeed/domain"
	"github.com/CrestNiraj12/issuefeed/engine"
	"github.com/CrestNiraj12/issuefeed/tui/common"
)

func (m Model) load() tea.Cmd {
	svc, ref, thread := m.svc, m.ref, m.thread
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		list, err := svc.ListComments(ctx, ref, thread.Number)
		return commentsLoadedMsg{threadID: thread.ID, comments: list, err: err}
	}
}

func (m Model) countChanged() tea.Cmd {
	id, n := m.thread.ID, len(m.list.items)
	return func() tea.Msg {
		return common.CommentCountChangedMsg{ThreadID: id, Count: n}
	}
}

// launchEditor suspends Bubble Tea while $EDITOR runs on a temp file.
func (m Model) launchEditor(content, editID string) tea.Cmd {
	if m.editor == nil {
		return nil
	}
	subject := fmt.Sprintf("%s#%d", m.ref, m.thread.Number)
	cmd, tmpPath, err := m.editor.Cmd(content, subject)
	if err != nil {
		return func() tea.Msg {
			return editorFinishedMsg{err: fmt.Errorf("preparing editor: %w", err)}
		}
	}
	return tea.ExecProcess(cmd, func(err error) tea.Msg {
		return editorFinishedMsg{tmpPath: tmpPath, editID: editID, original: content, err: err}
	})
}

// post appends a local placeholder and sends the comment.
func (m Model) post(body string) (Model, tea.Cmd) {
	body = strings.TrimSpace(body)
	if body == "" {
		m.status = domain.ErrEmptyComment.Error()
		return m, nil
	}
	local := item{
		Comment: domain.Comment{
			ID:        localIDPrefix + uuid.NewString(),
			Author:    domain.Author{Login: m.login},
			Body:      body,
			CreatedAt: m.now(),
		},
		status: statusPendingCreate,
	}
	m.list.items = append(m.list.items, local)
	m.cursor = len(m.list.items) - 1
	m.status = "Posting..."
	m.ensureCursorVisible()

	svc, subjectID, localID := m.svc, m.thread.ID, local.ID
	return m, tea.Batch(m.countChanged(), func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		c, err := svc.AddComment(ctx, subjectID, body)
		return postedMsg{localID: localID, comment: c, err: err}
	})
}

func (m Model) handlePosted(msg postedMsg) (Model, tea.Cmd) {
	i := m.list.index(msg.localID)
	if i < 0 {
		return m, nil
	}
	if msg.err != nil {
		m.list.items = slices.Delete(m.list.items, i, i+1)
		m.cursor = min(m.cursor, max(len(m.list.items)-1, 0))
		m.status = "Couldn't post comment: " + msg.err.Error()
		m.ensureCursorVisible()
		return m, m.countChanged()
	}
	m.status = "Comment posted."
	if j := m.list.index(msg.comment.ID); j >= 0 && j != i {
		// A reload already brought the server copy in.
		m.list.items = slices.Delete(m.list.items, i, i+1)
		m.cursor = min(m.cursor, max(len(m.list.items)-1, 0))
		return m, m.countChanged()
	}
	m.list.items[i] = item{Comment: msg.comment}
	return m, m.countChanged()
}

// edit rewrites an own comment in place and remembers the old body.
func (m Model) edit(id, body string) (Model, tea.Cmd) {
	body = strings.TrimSpace(body)
	i := m.list.index(id)
	if i < 0 {
		return m, nil
	}
	if body == "" {
		m.status = domain.ErrEmptyComment.Error()
		return m, nil
	}
	list := m.list
	m.edits[id] = engine.Take(list.items[i].Body, func(prev string) bool {
		j := list.index(id)
		if j < 0 {
			return false
		}
		list.items[j].Body = prev
		list.items[j].status = statusNormal
		return true
	})
	list.items[i].Body = body
	list.items[i].status = statusPendingUpdate
	m.status = "Updating..."

	svc := m.svc
	return m, func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		c, err := svc.UpdateComment(ctx, id, body)
		return updatedMsg{id: id, comment: c, err: err}
	}
}

func (m Model) handleUpdated(msg updatedMsg) (Model, tea.Cmd) {
	snap, ok := m.edits[msg.id]
	delete(m.edits, msg.id)
	if msg.err != nil {
		if ok {
			snap.Restore()
		}
		m.status = "Couldn't update comment: " + msg.err.Error()
		return m, nil
	}
	if i := m.list.index(msg.id); i >= 0 {
		c := msg.comment
		if c.ID == "" {
			c = m.list.items[i].Comment
		}
		m.list.items[i] = item{Comment: c}
	}
	m.status = "Comment updated."
	return m, nil
}

// remove drops a comment immediately; a failed delete puts it back.
func (m Model) remove(id string) (Model, tea.Cmd) {
	i := m.list.index(id)
	if i < 0 {
		return m, nil
	}
	list := m.list
	m.deletes[id] = engine.Take(removal{at: i, it: list.items[i]}, func(r removal) bool {
		if list.index(r.it.ID) >= 0 {
			return false
		}
		at := min(r.at, len(list.items))
		list.items = slices.Insert(list.items, at, r.it)
		return true
	})
	list.items = slices.Delete(list.items, i, i+1)
	m.cursor = min(m.cursor, max(len(list.items)-1, 0))
	m.status = "Deleting..."
	m.ensureCursorVisible()

	svc := m.svc
	return m, tea.Batch(m.countChanged(), func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		return deletedMsg{id: id, err: svc.DeleteComment(ctx, id)}
	})
}

func (m Model) handleDeleted(msg deletedMsg) (Model, tea.Cmd) {
	snap, ok := m.deletes[msg.id]
	delete(m.deletes, msg.id)
	if msg.err == nil {
		m.status = "Comment deleted."
		return m, nil
	}
	m.status = "Couldn't delete comment: " + msg.err.Error()
	if ok && snap.Restore() {
		m.ensureCursorVisible()
		return m, m.countChanged()
	}
	return m, nil
}
