package notifier_test

import (
	"encoding/json"
	"errors"
	"github.com/clambin/icomfort-monitor/internal/notifier"
	"github.com/clambin/icomfort-monitor/internal/notifier/mocks"
	"github.com/slack-go/slack"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"io"
	"log/slog"
	"testing"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func TestNotifiers_Notify(t *testing.T) {
	tests := []struct {
		name     string
		channel  string
		setup    func(*mocks.SlackSender)
		channels []string
	}{
		{
			name:     "configured channel",
			channel:  "C1",
			channels: []string{"C1"},
		},
		{
			name: "joined channels",
			setup: func(s *mocks.SlackSender) {
				s.EXPECT().AuthTest().Return(&slack.AuthTestResponse{UserID: "U1"}, nil).Once()
				s.EXPECT().GetConversations(mock.AnythingOfType("*slack.GetConversationsParameters")).
					RunAndReturn(func(params *slack.GetConversationsParameters) ([]slack.Channel, string, error) {
						if params.Cursor == "" {
							return []slack.Channel{
								{GroupConversation: slack.GroupConversation{Conversation: slack.Conversation{ID: "C1"}}, IsMember: true},
								{GroupConversation: slack.GroupConversation{Conversation: slack.Conversation{ID: "C2"}}, IsMember: false},
							}, "next", nil
						}
						return []slack.Channel{
							{GroupConversation: slack.GroupConversation{Conversation: slack.Conversation{ID: "C3"}, IsArchived: true}, IsMember: true},
							{GroupConversation: slack.GroupConversation{Conversation: slack.Conversation{ID: "C4"}}, IsMember: true},
						}, "", nil
					})
			},
			channels: []string{"C1", "C4"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			s := mocks.NewSlackSender(t)
			if tt.setup != nil {
				tt.setup(s)
			}
			for _, channel := range tt.channels {
				s.EXPECT().PostMessage(channel, mock.Anything).RunAndReturn(func(channel string, options ...slack.MsgOption) (string, string, error) {
					attachments := decodeAttachments(t, channel, options...)
					require.Len(t, attachments, 1)
					assert.Equal(t, "good", attachments[0].Color)
					assert.Equal(t, "home: set hvac mode to cool", attachments[0].Title)
					assert.Equal(t, "mode: cool", attachments[0].Text)
					return channel, "", nil
				}).Once()
			}

			n := notifier.Notifiers{
				&notifier.SLogNotifier{Logger: discard},
				&notifier.SlackNotifier{Logger: discard, SlackSender: s, Channel: tt.channel},
			}
			n.Notify("home: set hvac mode to cool", "mode: cool")
		})
	}
}

func TestSlackNotifier_Failures(t *testing.T) {
	s := mocks.NewSlackSender(t)
	n := notifier.SlackNotifier{Logger: discard, SlackSender: s}

	s.EXPECT().AuthTest().Return(nil, errors.New("invalid_auth")).Once()
	n.Notify("foo", "bar")

	s.EXPECT().AuthTest().Return(&slack.AuthTestResponse{UserID: "U1"}, nil).Once()
	s.EXPECT().GetConversations(mock.Anything).Return(nil, "", errors.New("rate limited")).Once()
	n.Notify("foo", "bar")

	// user ID is cached after the first successful AuthTest
	s.EXPECT().GetConversations(mock.Anything).Return([]slack.Channel{
		{GroupConversation: slack.GroupConversation{Conversation: slack.Conversation{ID: "C1"}}, IsMember: true},
	}, "", nil).Once()
	s.EXPECT().PostMessage("C1", mock.Anything).Return("", "", errors.New("channel_not_found")).Once()
	n.Notify("foo", "bar")
}

func decodeAttachments(t *testing.T, channel string, options ...slack.MsgOption) []slack.Attachment {
	t.Helper()
	_, values, err := slack.UnsafeApplyMsgOptions("", channel, "", options...)
	require.NoError(t, err)
	var attachments []slack.Attachment
	require.NoError(t, json.Unmarshal([]byte(values.Get("attachments")), &attachments))
	return attachments
}
