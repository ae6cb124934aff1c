package native

import (
	"testing"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/bedrock"
	"github.com/gogpu/bedrock/scene"
)

func TestRendererOnNoopDevice(t *testing.T) {
	a := newTestAdapter(t)
	r, err := bedrock.New(a)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	p := &fakePresenter{formats: []gputypes.TextureFormat{gputypes.TextureFormatBGRA8Unorm}}
	if err := r.HandleEvent(bedrock.Resumed{Target: p, Width: 64, Height: 48}); err != nil {
		t.Fatal(err)
	}
	s := scene.New().
		WithQuad(scene.NewQuad(scene.V2(4, 4), scene.V2(16, 16), scene.RGB(1, 0, 0))).
		WithLayer(scene.NewLayer().WithClip(scene.R(8, 8, 32, 16)).WithBlur(4))
	if err := r.Render(s); err != nil {
		t.Fatalf("Render() = %v", err)
	}
	if p.presents != 1 {
		t.Errorf("presents = %d, want 1", p.presents)
	}
	if err := r.HandleEvent(bedrock.Resized{Width: 32, Height: 32}); err != nil {
		t.Fatal(err)
	}
	if p.width != 32 || p.height != 32 {
		t.Errorf("presenter configured at %dx%d, want 32x32", p.width, p.height)
	}
}
