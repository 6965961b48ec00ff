package memory

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShouldCapture_LengthBounds(t *testing.T) {
	tests := []struct {
		name string
		text string
		want bool
	}{
		{"nine chars with cue", "remember!", false},
		{"ten chars with cue", "remember!!", true},
		{"exactly 500", "remember " + strings.Repeat("x", 491), true},
		{"501 chars", "remember " + strings.Repeat("x", 492), false},
		{"empty", "", false},
		{"short chinese counted in characters", "记住我的名字", false},
		{"chinese over ten characters", "请记住我的名字是小明啊", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ShouldCapture(tt.text))
		})
	}
}

func TestShouldCapture_RejectsRecallMarker(t *testing.T) {
	text := "please remember this\n" + RecallMarker + "\n- I like tea\n</relevant-memories>"
	assert.False(t, ShouldCapture(text))
}

func TestShouldCapture_RejectsMarkupWrapper(t *testing.T) {
	assert.False(t, ShouldCapture("<system>remember my email a@b.co</system>"))
	// an opening bracket alone is not a wrapper
	assert.True(t, ShouldCapture("<3 remember my birthday is in May"))
}

func TestShouldCapture_NoTrigger(t *testing.T) {
	assert.False(t, ShouldCapture("what is the weather like today?"))
	assert.False(t, ShouldCapture("run the tests again please"))
}

// Each rule is exercised on its own so adding a rule can never silently
// change what an existing rule accepts.
func TestCaptureTriggers_EachRule(t *testing.T) {
	cases := map[string][]string{
		"remember":   {"Please REMEMBER the launch date", "帮我记住这个地址吧谢谢你", "你还记得上次的会议吗好的"},
		"preference": {"I prefer tabs over spaces", "honestly i hate yaml files", "我喜欢喝绿茶，不加糖的那种", "我不喜欢开早会，太早了真的"},
		"importance": {"This is IMPORTANT for the release", "这个很重要，请一定注意一下", "关键的部分在第二章节里面"},
		"email":      {"reach me at jane.doe@example.org"},
		"phone":      {"call me on +4915112345678", "number 0123456789 works"},
		"possessive": {"my dog is called Biscuit", "我的生日是五月三号，别忘了"},
	}

	byName := map[string]Trigger{}
	for _, tr := range CaptureTriggers {
		byName[tr.Name] = tr
	}
	require.Len(t, byName, len(cases), "every rule needs a regression case")

	for name, texts := range cases {
		tr, ok := byName[name]
		require.True(t, ok, "unknown rule %q", name)
		for _, text := range texts {
			t.Run(name+"/"+text, func(t *testing.T) {
				assert.True(t, tr.Match(text), "rule %s should match %q", name, text)
				assert.True(t, ShouldCapture(text))
			})
		}
	}
}

func TestCaptureTriggers_NearMisses(t *testing.T) {
	byName := map[string]Trigger{}
	for _, tr := range CaptureTriggers {
		byName[tr.Name] = tr
	}

	assert.False(t, byName["phone"].Match("only 123456789 here"), "nine digits is not a phone")
	assert.False(t, byName["email"].Match("user at example dot com"))
	assert.False(t, byName["possessive"].Match("my is broken"))
	assert.False(t, byName["preference"].Match("they look alike in photos"))
}

func TestTruncateRunes(t *testing.T) {
	assert.Equal(t, "abc", truncateRunes("abcdef", 3))
	assert.Equal(t, "ab", truncateRunes("ab", 3))
	assert.Equal(t, "记住我", truncateRunes("记住我的名字", 3))
}
