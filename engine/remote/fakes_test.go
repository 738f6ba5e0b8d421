package remote

import (
	"github.com/Carmen-Shannon/oxy-remote/engine/framebuffer"
)

// fakeSimulation replays scripted echoes and counts calls. Like a real worker it has no
// composite to copy until it has echoed a frame, unless composited is preset.
type fakeSimulation struct {
	connected   bool
	composited  bool
	echoes      []FrameUpdate
	submitErr   error
	copyErr     error
	submissions []Submission
	copies      int
}

func (f *fakeSimulation) Connected() bool { return f.connected }

func (f *fakeSimulation) SubmitPose(s Submission) (FrameUpdate, error) {
	f.submissions = append(f.submissions, s)
	if f.submitErr != nil {
		return FrameUpdate{}, f.submitErr
	}
	if len(f.echoes) == 0 {
		return FrameUpdate{}, nil
	}
	u := f.echoes[0]
	f.echoes = f.echoes[1:]
	if !u.NoFrame() {
		f.composited = true
	}
	return u, nil
}

func (f *fakeSimulation) CopyCompositeInto(color, depth framebuffer.Target) error {
	f.copies++
	if f.copyErr != nil {
		return f.copyErr
	}
	if !f.composited {
		return ErrNoComposite
	}
	return nil
}

type fakePassthrough struct {
	connected bool
	updateErr error
	copyErr   error
	updates   []*CoordinateSystem
	copies    int
}

func (f *fakePassthrough) Connected() bool { return f.connected }

func (f *fakePassthrough) UpdateCoordinateSystem(cs *CoordinateSystem) error {
	f.updates = append(f.updates, cs)
	return f.updateErr
}

func (f *fakePassthrough) CopyCompositeInto(color, depth framebuffer.Target) error {
	f.copies++
	return f.copyErr
}

// failingBinder rejects every bind.
type failingBinder struct{}

func (failingBinder) BindRenderTarget(framebuffer.FrameBuffer, int, int) error {
	return framebuffer.ErrSizeMismatch
}
