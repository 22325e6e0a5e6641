package applyblocks

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseBlocks(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want []EditBlock
	}{
		{
			name: "single modern block",
			doc:  "------- SEARCH\nfoo\n=======\nbar\n+++++++ REPLACE\n",
			want: []EditBlock{{Search: "foo", Replace: "bar"}},
		},
		{
			name: "modern without spaces and long runs",
			doc:  "----------SEARCH\nfoo\n==========\nbar\n++++++++++REPLACE",
			want: []EditBlock{{Search: "foo", Replace: "bar"}},
		},
		{
			name: "concatenated modern blocks separated by blank lines",
			doc: "------- SEARCH\na\nb\n=======\nA\nB\n+++++++ REPLACE\n\n" +
				"------- SEARCH\nc\n=======\nC\n+++++++ REPLACE",
			want: []EditBlock{
				{Search: "a\nb", Replace: "A\nB"},
				{Search: "c", Replace: "C"},
			},
		},
		{
			name: "trailing newlines trimmed from both spans",
			doc:  "------- SEARCH\nfoo\n\n\n=======\nbar\n\n+++++++ REPLACE",
			want: []EditBlock{{Search: "foo", Replace: "bar"}},
		},
		{
			name: "empty search",
			doc:  "------- SEARCH\n=======\nnew file\n+++++++ REPLACE",
			want: []EditBlock{{Search: "", Replace: "new file"}},
		},
		{
			name: "empty replace",
			doc:  "------- SEARCH\nremove me\n=======\n+++++++ REPLACE",
			want: []EditBlock{{Search: "remove me", Replace: ""}},
		},
		{
			name: "leading whitespace inside spans is kept",
			doc:  "------- SEARCH\n    indented()\n=======\n\tindented()\n+++++++ REPLACE",
			want: []EditBlock{{Search: "    indented()", Replace: "\tindented()"}},
		},
		{
			name: "crlf markers",
			doc:  "------- SEARCH\r\nfoo\r\n=======\r\nbar\r\n+++++++ REPLACE\r\n",
			want: []EditBlock{{Search: "foo", Replace: "bar"}},
		},
		{
			name: "text around blocks is ignored",
			doc:  "I'll rename it.\n\n------- SEARCH\nold\n=======\nnew\n+++++++ REPLACE\n\nDone.",
			want: []EditBlock{{Search: "old", Replace: "new"}},
		},
		{
			name: "six dashes is not a marker",
			doc:  "------ SEARCH\nfoo\n=======\nbar\n+++++++ REPLACE",
			want: nil,
		},
		{
			name: "unterminated modern block",
			doc:  "------- SEARCH\nfoo\n=======\nbar",
			want: nil,
		},
		{
			name: "unterminated block followed by complete block",
			doc:  "------- SEARCH\nlost\n------- SEARCH\nfoo\n=======\nbar\n+++++++ REPLACE",
			want: []EditBlock{{Search: "foo", Replace: "bar"}},
		},
		{
			name: "legacy block with replace marker",
			doc:  "<<< SEARCH\nfoo\n=======\nbar\n>>> REPLACE",
			want: []EditBlock{{Search: "foo", Replace: "bar"}},
		},
		{
			name: "legacy blocks ended by next search marker and end of document",
			doc:  "<SEARCH>\na\n=======\nb\n\n<<SEARCH\nc\n=======\nd\n",
			want: []EditBlock{
				{Search: "a", Replace: "b"},
				{Search: "c", Replace: "d"},
			},
		},
		{
			name: "legacy replace marker needs exactly three brackets",
			doc:  "<<<SEARCH\na\n=======\nb\n>>>>REPLACE",
			want: []EditBlock{{Search: "a", Replace: "b\n>>>>REPLACE"}},
		},
		{
			name: "legacy search marker allows at most three brackets",
			doc:  "<<<<<<< SEARCH\na\n=======\nb\n>>>>>>> REPLACE",
			want: nil,
		},
		{
			name: "modern blocks win over legacy blocks",
			doc:  "<<< SEARCH\nx\n=======\ny\n>>> REPLACE\n------- SEARCH\nfoo\n=======\nbar\n+++++++ REPLACE",
			want: []EditBlock{{Search: "foo", Replace: "bar"}},
		},
		{
			name: "first divider wins",
			doc:  "------- SEARCH\na\n=======\nb\n=======\nc\n+++++++ REPLACE",
			want: []EditBlock{{Search: "a", Replace: "b\n=======\nc"}},
		},
		{
			name: "plain text",
			doc:  "package main\n\nfunc main() {}\n",
			want: nil,
		},
		{
			name: "empty",
			doc:  "",
			want: nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, ParseBlocks(tt.doc))
		})
	}
}

func TestParse_Kinds(t *testing.T) {
	doc := "------- SEARCH\nfoo\n=======\nbar\n+++++++ REPLACE"
	parsed := Parse(doc)
	require.Equal(t, ParsedBlocks, parsed.Kind)
	require.Len(t, parsed.Blocks, 1)
	require.Equal(t, "", parsed.Raw)

	raw := "just a whole file\n"
	parsed = Parse(raw)
	require.Equal(t, ParsedRawReplacement, parsed.Kind)
	require.Nil(t, parsed.Blocks)
	require.Equal(t, raw, parsed.Raw)
}
