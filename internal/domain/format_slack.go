package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// FormatChannels renders a page of Slack channels.
func FormatChannels(channels []Channel) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📋 Slack channels (%d):\n\n", len(channels))
	for _, channel := range channels {
		members := PlaceholderUnknown
		if channel.NumMembers > 0 {
			members = strconv.Itoa(channel.NumMembers)
		}
		fmt.Fprintf(&b, "📌 %s (ID: %s)\n", channel.Name, channel.ID)
		fmt.Fprintf(&b, "  Members: %s\n", members)
		fmt.Fprintf(&b, "  Private: %s\n", yesNo(channel.IsPrivate))
		fmt.Fprintf(&b, "  Archived: %s\n\n", yesNo(channel.IsArchived))
	}
	return b.String()
}

// FormatChannelHistory renders the recent messages of a channel.
// Messages without a user id are attributed to PlaceholderBot.
func FormatChannelHistory(messages []Message, loc *time.Location) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📝 Channel history (%d messages):\n\n", len(messages))
	for _, msg := range messages {
		fmt.Fprintf(&b, "👤 %s: %s\n", orPlaceholder(msg.User, PlaceholderBot), msg.Text)
		fmt.Fprintf(&b, "⏰ %s\n\n", FormatEpoch(msg.TS, loc))
	}
	return b.String()
}

// FormatMessagePosted renders the confirmation of a posted message.
func FormatMessagePosted(channelID, text string) string {
	return fmt.Sprintf("✅ Message sent successfully!\n📝 Message: %s\n📋 Channel: %s", text, channelID)
}
