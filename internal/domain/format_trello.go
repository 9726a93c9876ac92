package domain

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// FormatBoards renders the boards the member belongs to.
func FormatBoards(boards []Board) string {
	entries := make([]string, 0, len(boards))
	for _, board := range boards {
		entries = append(entries, fmt.Sprintf("• %s (ID: %s)\n  URL: %s\n  Closed: %s\n",
			board.Name, board.ID, board.URL, yesNo(board.Closed)))
	}
	return fmt.Sprintf("📋 Boards found (%d):\n\n%s", len(boards), strings.Join(entries, "\n"))
}

// FormatBoardView renders a board with its cards grouped by list.
// Groups appear in the order their list is first seen among the cards.
func FormatBoardView(board *Board, cards []Card, lists []List, loc *time.Location) string {
	listNames := make(map[string]string, len(lists))
	for _, list := range lists {
		listNames[list.ID] = list.Name
	}

	var order []string
	groups := make(map[string][]Card)
	for _, card := range cards {
		name, ok := listNames[card.IDList]
		if !ok {
			name = UnknownListName
		}
		if _, seen := groups[name]; !seen {
			order = append(order, name)
		}
		groups[name] = append(groups[name], card)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "📋 Board: %s\n📊 Total cards: %d\n\n", board.Name, len(cards))
	for _, name := range order {
		group := groups[name]
		fmt.Fprintf(&b, "📌 %s (%d cards):\n", name, len(group))
		for _, card := range group {
			fmt.Fprintf(&b, "  • %s\n", card.Name)
			if card.Desc != "" {
				fmt.Fprintf(&b, "    Description: %s\n", Truncate(card.Desc))
			}
			if card.Due != "" {
				fmt.Fprintf(&b, "    Due: %s\n", FormatDate(card.Due, loc))
			}
		}
		b.WriteString("\n")
	}
	return b.String()
}

// FormatCardCreated renders the confirmation of a created card.
func FormatCardCreated(card *Card, listID string) string {
	return fmt.Sprintf("✅ Card created successfully!\n📄 Name: %s\n📋 List: %s\n🔗 URL: %s",
		card.Name, listID, orPlaceholder(card.URL, PlaceholderUnknown))
}

// FormatCardMoved renders the confirmation of a moved card.
// list is the destination list id or, when resolved by name, its name.
func FormatCardMoved(card *Card, list string) string {
	return fmt.Sprintf("✅ Card moved successfully!\n📄 Card: %s\n📋 New list: %s", card.Name, list)
}

// FormatCardDeleted renders the confirmation of a deleted card.
func FormatCardDeleted(name string) string {
	if name == "" {
		return "✅ Card deleted successfully!"
	}
	return fmt.Sprintf("✅ Card deleted successfully!\n📄 Card: %s", name)
}

// FormatLists renders the lists of a board with the number of cards in each.
func FormatLists(lists []List, cards []Card) string {
	counts := make(map[string]int, len(lists))
	for _, card := range cards {
		counts[card.IDList]++
	}

	var b strings.Builder
	fmt.Fprintf(&b, "📋 Lists on the board (%d):\n\n", len(lists))
	for i, list := range lists {
		fmt.Fprintf(&b, "%d. *%s* (%d cards)\n   ID: %s\n", i+1, list.Name, counts[list.ID], list.ID)
	}
	return b.String()
}

// ListCount is the number of cards in one list.
type ListCount struct {
	Name  string
	Count int
}

// BoardStats summarizes how cards are distributed over the lists of a board.
type BoardStats struct {
	TotalCards int
	TotalLists int
	// AverageCardsPerList is rounded to two decimals.
	AverageCardsPerList float64
	// CardsByList is sorted by count, highest first; ties keep first-seen order.
	CardsByList []ListCount
}

// ComputeBoardStats counts the cards of each list. Cards whose list is not
// among lists are counted under UnknownListName.
func ComputeBoardStats(cards []Card, lists []List) BoardStats {
	listNames := make(map[string]string, len(lists))
	for _, list := range lists {
		listNames[list.ID] = list.Name
	}

	var counts []ListCount
	index := make(map[string]int)
	for _, card := range cards {
		name, ok := listNames[card.IDList]
		if !ok {
			name = UnknownListName
		}
		i, seen := index[name]
		if !seen {
			i = len(counts)
			index[name] = i
			counts = append(counts, ListCount{Name: name})
		}
		counts[i].Count++
	}
	sort.SliceStable(counts, func(i, j int) bool { return counts[i].Count > counts[j].Count })

	stats := BoardStats{
		TotalCards:  len(cards),
		TotalLists:  len(lists),
		CardsByList: counts,
	}
	if len(lists) > 0 {
		stats.AverageCardsPerList = round2(float64(len(cards)) / float64(len(lists)))
	}
	return stats
}

// FormatBoardStats renders the card distribution of a board.
func FormatBoardStats(stats BoardStats) string {
	lines := []string{
		"📊 *Trello Board Statistics*\n",
		"📈 *Overview:*",
		fmt.Sprintf("• Total cards: *%d*", stats.TotalCards),
		fmt.Sprintf("• Total lists: *%d*", stats.TotalLists),
		fmt.Sprintf("• Average cards per list: *%s*\n", formatFloat(stats.AverageCardsPerList)),
		"📋 *Distribution by list:*",
	}

	for i, entry := range stats.CardsByList {
		var percent float64
		if stats.TotalCards > 0 {
			percent = float64(entry.Count) / float64(stats.TotalCards) * 100
		}
		lines = append(lines,
			fmt.Sprintf("%d. *%s*", i+1, entry.Name),
			fmt.Sprintf("   • Cards: %d (%.1f%%)", entry.Count, percent),
			fmt.Sprintf("   • %s", progressBar(percent)),
		)
	}

	return strings.Join(lines, "\n")
}
