// Package resources tracks the fonts and images shared across pages.
// Every asset is identified by a fingerprint over its normalized content;
// registering the same content twice hands back the existing reference so the
// asset is embedded exactly once. The fingerprint map lives on the Manager
// and dies with it; there is deliberately no cross-document or on-disk cache.
package resources

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/docfold/pdfgen/filters"
	"github.com/docfold/pdfgen/fonts"
	"github.com/docfold/pdfgen/observability"
)

// Kind is the resource dictionary category an asset belongs to.
type Kind string

const (
	KindFont    Kind = "Font"
	KindXObject Kind = "XObject"
)

// ResourceRef names a registered asset inside page resource dictionaries.
type ResourceRef struct {
	Kind Kind
	Name string // e.g. "F1", "Im2"
}

// InvalidResourceError reports a malformed font or image payload.
type InvalidResourceError struct {
	Reason string
	Err    error
}

func (e *InvalidResourceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid resource: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("invalid resource: %s", e.Reason)
}

func (e *InvalidResourceError) Unwrap() error { return e.Err }

// FontSpec describes a font to register. When Data is set the font program
// is embedded; otherwise Family selects one of the built-in core fonts.
type FontSpec struct {
	Family string
	Bold   bool
	Italic bool
	Data   []byte
	Subset bool
}

// FontResource is a registered font.
type FontResource struct {
	Ref      ResourceRef
	Metrics  fonts.Metrics
	Embedded *fonts.Embedded // nil for core fonts
	Subset   bool
}

// ImageResource is a registered image, already encoded with its filter.
type ImageResource struct {
	Ref              ResourceRef
	Width            int
	Height           int
	ColorSpace       string
	BitsPerComponent int
	Filter           filters.Filter
	Encoded          []byte
	// SMaskEncoded holds the encoded DeviceGray alpha plane; nil when the
	// source was fully opaque or the filter cannot carry one.
	SMaskEncoded []byte
}

// HasSoftMask reports whether a soft mask object will be written.
func (img *ImageResource) HasSoftMask() bool { return img.SMaskEncoded != nil }

// Manager owns the per-document resource registry.
type Manager struct {
	registry      *filters.Registry
	log           observability.Logger
	byFingerprint map[string]ResourceRef
	fonts         []*FontResource
	images        []*ImageResource
	byName        map[ResourceRef]interface{}
	dedupHits     int
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger installs a logger; the default discards everything.
func WithLogger(log observability.Logger) Option {
	return func(m *Manager) { m.log = log }
}

func NewManager(opts ...Option) *Manager {
	m := &Manager{
		registry:      filters.NewRegistry(),
		log:           observability.NopLogger{},
		byFingerprint: make(map[string]ResourceRef),
		byName:        make(map[ResourceRef]interface{}),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// DedupHits reports how many registrations were satisfied from the
// fingerprint map instead of embedding a new asset.
func (m *Manager) DedupHits() int { return m.dedupHits }

// Fonts returns registered fonts in registration order.
func (m *Manager) Fonts() []*FontResource { return m.fonts }

// Images returns registered images in registration order.
func (m *Manager) Images() []*ImageResource { return m.images }

// Font resolves a previously returned font reference.
func (m *Manager) Font(ref ResourceRef) (*FontResource, bool) {
	f, ok := m.byName[ref].(*FontResource)
	return f, ok
}

// Image resolves a previously returned image reference.
func (m *Manager) Image(ref ResourceRef) (*ImageResource, bool) {
	img, ok := m.byName[ref].(*ImageResource)
	return img, ok
}

// RegisterFont registers a font, deduplicating by content fingerprint
// (font identity plus subsetting parameters).
func (m *Manager) RegisterFont(spec FontSpec) (ResourceRef, error) {
	var metrics fonts.Metrics
	var embedded *fonts.Embedded
	h := sha256.New()
	h.Write([]byte("font\x00"))
	if len(spec.Data) > 0 {
		loaded, err := fonts.LoadTrueType(spec.Family, spec.Data)
		if err != nil {
			return ResourceRef{}, &InvalidResourceError{Reason: "font program", Err: err}
		}
		embedded = loaded
		metrics = loaded
		h.Write(spec.Data)
	} else {
		core, err := fonts.LoadCore(spec.Family, spec.Bold, spec.Italic)
		if err != nil {
			return ResourceRef{}, &InvalidResourceError{Reason: "core font", Err: err}
		}
		metrics = core
		h.Write([]byte(core.BaseName()))
	}
	fmt.Fprintf(h, "\x00subset=%t", spec.Subset)
	fingerprint := hex.EncodeToString(h.Sum(nil))

	if ref, ok := m.byFingerprint[fingerprint]; ok {
		m.dedupHits++
		m.log.Debug("font deduplicated", observability.String("name", ref.Name))
		return ref, nil
	}

	ref := ResourceRef{Kind: KindFont, Name: fmt.Sprintf("F%d", len(m.fonts)+1)}
	res := &FontResource{Ref: ref, Metrics: metrics, Embedded: embedded, Subset: spec.Subset}
	m.fonts = append(m.fonts, res)
	m.byFingerprint[fingerprint] = ref
	m.byName[ref] = res
	return ref, nil
}

// RegisterImage encodes img with the requested filter (filters.Auto picks
// one from the payload) and registers it, deduplicating by pixel content
// plus chosen filter.
func (m *Manager) RegisterImage(ctx context.Context, img RasterImage, filter filters.Filter) (ResourceRef, error) {
	if err := img.validate(); err != nil {
		return ResourceRef{}, err
	}
	filter = img.pickFilter(filter)

	fingerprint, err := img.fingerprint(filter)
	if err != nil {
		return ResourceRef{}, err
	}
	if ref, ok := m.byFingerprint[fingerprint]; ok {
		m.dedupHits++
		m.log.Debug("image deduplicated", observability.String("name", ref.Name))
		return ref, nil
	}

	res, err := m.encodeImage(ctx, img, filter)
	if err != nil {
		return ResourceRef{}, err
	}
	res.Ref = ResourceRef{Kind: KindXObject, Name: fmt.Sprintf("Im%d", len(m.images)+1)}
	m.images = append(m.images, res)
	m.byFingerprint[fingerprint] = res.Ref
	m.byName[res.Ref] = res
	m.log.Debug("image registered",
		observability.String("name", res.Ref.Name),
		observability.String("filter", string(res.Filter)),
		observability.Int("bytes", len(res.Encoded)))
	return res.Ref, nil
}

func (m *Manager) encodeImage(ctx context.Context, img RasterImage, filter filters.Filter) (*ImageResource, error) {
	res := &ImageResource{
		Width:            img.Width,
		Height:           img.Height,
		ColorSpace:       img.ColorSpace,
		BitsPerComponent: img.BitsPerComponent,
		Filter:           filter,
	}

	if filter == filters.DCT {
		encoded, err := m.registry.Encode(ctx, filter, img.JPEG)
		if err != nil {
			return nil, &InvalidResourceError{Reason: "jpeg payload", Err: err}
		}
		// A DCT stream cannot carry the gray alpha plane losslessly, so
		// transparency is dropped for pass-through JPEGs.
		res.Encoded = encoded
		return res, nil
	}

	encoded, err := m.registry.Encode(ctx, filter, img.Pix)
	if err != nil {
		return nil, err
	}
	res.Encoded = encoded

	if img.hasTransparency() {
		mask, err := m.registry.Encode(ctx, filter, img.Alpha)
		if err != nil {
			return nil, err
		}
		res.SMaskEncoded = mask
	}
	return res, nil
}
