package corpusloop

import "testing"

func TestExtractBlocksSingle(t *testing.T) {
	response := "Let me look.\n\n```lua\nprint(#corpus)\n```\n\nDone."
	blocks := ExtractBlocks(response)
	if len(blocks) != 1 {
		t.Fatalf("len(blocks) = %d, want 1", len(blocks))
	}
	if blocks[0] != "print(#corpus)" {
		t.Errorf("blocks[0] = %q", blocks[0])
	}
}

func TestExtractBlocksMultipleInOrder(t *testing.T) {
	response := "```lua\nfirst = 1\n```\nsome prose\n```lua\nsecond = 2\n```"
	blocks := ExtractBlocks(response)
	if len(blocks) != 2 {
		t.Fatalf("len(blocks) = %d, want 2", len(blocks))
	}
	if blocks[0] != "first = 1" || blocks[1] != "second = 2" {
		t.Errorf("blocks = %q", blocks)
	}
}

func TestExtractBlocksIgnoresOtherLanguages(t *testing.T) {
	response := "```python\nprint('no')\n```\n```lua\nprint('yes')\n```\n```\nbare fence\n```"
	blocks := ExtractBlocks(response)
	if len(blocks) != 1 {
		t.Fatalf("len(blocks) = %d, want 1", len(blocks))
	}
	if blocks[0] != "print('yes')" {
		t.Errorf("blocks[0] = %q", blocks[0])
	}
}

func TestExtractBlocksPreservesInteriorLines(t *testing.T) {
	response := "```lua\nlocal t = {}\n\nfor i = 1, 3 do\n  t[i] = i\nend\n```"
	blocks := ExtractBlocks(response)
	if len(blocks) != 1 {
		t.Fatalf("len(blocks) = %d, want 1", len(blocks))
	}
	want := "local t = {}\n\nfor i = 1, 3 do\n  t[i] = i\nend"
	if blocks[0] != want {
		t.Errorf("blocks[0] = %q, want %q", blocks[0], want)
	}
}

func TestExtractBlocksUnterminated(t *testing.T) {
	response := "```lua\nprint('half written'"
	if blocks := ExtractBlocks(response); len(blocks) != 0 {
		t.Errorf("blocks = %q, want none", blocks)
	}
}

func TestExtractBlocksNone(t *testing.T) {
	if blocks := ExtractBlocks("just prose, no code"); len(blocks) != 0 {
		t.Errorf("blocks = %q, want none", blocks)
	}
}

func TestExtractBlocksIndentedFences(t *testing.T) {
	// Fence lines may be indented inside list items.
	response := "  ```lua\n  print(1)\n  ```"
	blocks := ExtractBlocks(response)
	if len(blocks) != 1 {
		t.Fatalf("len(blocks) = %d, want 1", len(blocks))
	}
	if blocks[0] != "  print(1)" {
		t.Errorf("blocks[0] = %q", blocks[0])
	}
}
