package domain

import "testing"

func TestSummarize(t *testing.T) {
	tests := []struct {
		name      string
		ratings   []int
		wantAvg   float64
		wantCount int
	}{
		{"empty", nil, 0, 0},
		{"single", []int{4}, 4.0, 1},
		{"rounds to one decimal", []int{5, 5, 4, 3}, 4.3, 4},
		{"rounds half up", []int{4, 3}, 3.5, 2},
		{"repeating third truncates", []int{5, 4, 4}, 4.3, 3},
		{"skips out of range", []int{5, 0, 6, -2, 3}, 4.0, 2},
		{"all out of range", []int{0, 6}, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Summarize(tt.ratings)
			if got.AverageRating != tt.wantAvg {
				t.Errorf("AverageRating = %v, want %v", got.AverageRating, tt.wantAvg)
			}
			if got.ReviewCount != tt.wantCount {
				t.Errorf("ReviewCount = %d, want %d", got.ReviewCount, tt.wantCount)
			}
		})
	}
}

func TestNextVoteState(t *testing.T) {
	tests := []struct {
		name    string
		current int
		cast    int
		want    int
	}{
		{"fresh upvote", VoteNone, VoteUp, VoteUp},
		{"fresh downvote", VoteNone, VoteDown, VoteDown},
		{"repeat upvote removes", VoteUp, VoteUp, VoteNone},
		{"repeat downvote removes", VoteDown, VoteDown, VoteNone},
		{"up flips to down", VoteUp, VoteDown, VoteDown},
		{"down flips to up", VoteDown, VoteUp, VoteUp},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NextVoteState(tt.current, tt.cast); got != tt.want {
				t.Errorf("NextVoteState(%d, %d) = %d, want %d", tt.current, tt.cast, got, tt.want)
			}
		})
	}
}

func TestNextVoteStateToggleLaw(t *testing.T) {
	// Casting the same vote twice always returns to none.
	for _, cast := range []int{VoteUp, VoteDown} {
		once := NextVoteState(VoteNone, cast)
		twice := NextVoteState(once, cast)
		if twice != VoteNone {
			t.Errorf("double cast of %d ended at %d, want %d", cast, twice, VoteNone)
		}
	}
}

func TestParseSortMode(t *testing.T) {
	tests := []struct {
		input string
		want  SortMode
	}{
		{"newest", SortNewest},
		{"oldest", SortOldest},
		{"most_upvoted", SortMostUpvoted},
		{"most_downvoted", SortMostDownvoted},
		{"", SortNewest},
		{"garbage", SortNewest},
		{"NEWEST", SortNewest}, // case-sensitive: unrecognized falls back
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ParseSortMode(tt.input); got != tt.want {
				t.Errorf("ParseSortMode(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestSortModeString(t *testing.T) {
	for _, mode := range []SortMode{SortNewest, SortOldest, SortMostUpvoted, SortMostDownvoted} {
		if ParseSortMode(mode.String()) != mode {
			t.Errorf("ParseSortMode(%q) did not round-trip %v", mode.String(), mode)
		}
	}
}
