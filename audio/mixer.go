// SPDX-License-Identifier: EPL-2.0

package audio

import "fmt"

// ChannelMixer remaps the channels of src to a fixed output channel count.
// Output channel c averages every input channel k with k%out == c when
// downmixing, and copies input channel c%in when upmixing.
type ChannelMixer struct {
	src Source
	out int
	tmp []float32
}

func NewChannelMixer(src Source, channels int) *ChannelMixer {
	return &ChannelMixer{
		src: src,
		out: max(channels, 1),
		tmp: make([]float32, 4096),
	}
}

// NewMonoMixer averages all channels of src into one.
func NewMonoMixer(src Source) *ChannelMixer {
	return NewChannelMixer(src, 1)
}

func (m *ChannelMixer) SampleRate() int { return m.src.SampleRate() }
func (m *ChannelMixer) Channels() int   { return m.out }
func (m *ChannelMixer) BufSize() int    { return m.src.BufSize() }

func (m *ChannelMixer) Close() error {
	if err := m.src.Close(); err != nil {
		return fmt.Errorf("%w", err)
	}
	return nil
}

func (m *ChannelMixer) ReadSamples(dst []float32) (int, error) {
	in := m.src.Channels()
	if in == m.out {
		return m.src.ReadSamples(dst)
	}
	if len(dst)%m.out != 0 {
		return 0, ErrInvalidDstSize
	}

	frames := len(dst) / m.out
	if frames == 0 {
		return 0, nil
	}

	need := frames * in
	if cap(m.tmp) < need {
		m.tmp = make([]float32, max(need, 8192))
	}
	m.tmp = m.tmp[:need]

	n, err := m.src.ReadSamples(m.tmp)
	got := n / in

	switch {
	case m.out == 1 && in == 2:
		for f := range got {
			dst[f] = (m.tmp[2*f] + m.tmp[2*f+1]) * 0.5
		}
	case in == 1:
		for f := range got {
			v := m.tmp[f]
			for c := range m.out {
				dst[f*m.out+c] = v
			}
		}
	case in > m.out:
		for f := range got {
			frame := m.tmp[f*in : (f+1)*in]
			for c := range m.out {
				var sum float32
				var count int
				for k := c; k < in; k += m.out {
					sum += frame[k]
					count++
				}
				dst[f*m.out+c] = sum / float32(count)
			}
		}
	default:
		for f := range got {
			frame := m.tmp[f*in : (f+1)*in]
			for c := range m.out {
				dst[f*m.out+c] = frame[c%in]
			}
		}
	}

	return got * m.out, err
}
