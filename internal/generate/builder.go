package generate

import (
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-playground/validator/v10"

	"github.com/sant0-9/promptcraft/internal/catalog"
	"github.com/sant0-9/promptcraft/internal/config"
	"github.com/sant0-9/promptcraft/internal/llm"
	"github.com/sant0-9/promptcraft/internal/prompts"
)

// maxAttachmentSize caps a single image read from disk.
const maxAttachmentSize = 20 << 20

// Request is one guided generation.
type Request struct {
	Task     Task              `validate:"required"`
	Subtype  string            `validate:"required"`
	Inputs   map[string]string `validate:"-"`
	Language string            `validate:"omitempty,oneof=vi en"`
}

var validate *validator.Validate

func init() {
	validate = validator.New()
	validate.RegisterStructValidation(validateRequest, Request{})
}

func validateRequest(sl validator.StructLevel) {
	r := sl.Current().Interface().(Request)
	if r.Task != "" && !r.Task.Valid() {
		sl.ReportError(r.Task, "Task", "Task", "task", "")
		return
	}
	for _, s := range r.Task.Subtypes() {
		if s == r.Subtype {
			return
		}
	}
	sl.ReportError(r.Subtype, "Subtype", "Subtype", "subtype", "")
}

// Validate checks the task and subtype pair and the language code.
func (r *Request) Validate() error {
	if err := validate.Struct(r); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("invalid request: %s %q failed %q", fe.Field(), fe.Value(), fe.Tag())
		}
		return fmt.Errorf("invalid request: %w", err)
	}
	return nil
}

// ErrImagesUnsupported is returned for image inputs sent to a provider
// without vision support.
var ErrImagesUnsupported = errors.New("provider does not accept images")

// HasImages reports whether any image field of the request is filled.
func (r *Request) HasImages() bool {
	for _, f := range Fields(r.Task, r.Subtype) {
		if f.Kind == catalog.KindImage && strings.TrimSpace(r.Inputs[f.Key]) != "" {
			return true
		}
	}
	return false
}

// CheckProvider refuses image inputs when providerID is known not to read
// images. Unknown providers pass.
func (r *Request) CheckProvider(providerID string) error {
	info := config.GetProvider(providerID)
	if info == nil || info.Vision || !r.HasImages() {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrImagesUnsupported, info.Name)
}

// Prompt is a fully built outbound request.
type Prompt struct {
	System      string
	User        string
	Inputs      map[string]string
	Attachments []llm.Attachment
}

// Build turns a request into the system and user messages. Image inputs are
// read from disk and attached; empty inputs are dropped.
func Build(req *Request) (*Prompt, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	kinds := make(map[string]catalog.Kind)
	for _, f := range Fields(req.Task, req.Subtype) {
		kinds[f.Key] = f.Kind
	}

	p := &Prompt{Inputs: make(map[string]string)}
	for _, k := range slices.Sorted(maps.Keys(req.Inputs)) {
		v := strings.TrimSpace(req.Inputs[k])
		if v == "" {
			continue
		}
		if kinds[k] == catalog.KindImage {
			att, err := LoadAttachment(v)
			if err != nil {
				return nil, fmt.Errorf("input %s: %w", k, err)
			}
			p.Attachments = append(p.Attachments, att)
			p.Inputs[k] = "[Image: " + att.Name + "]"
			continue
		}
		p.Inputs[k] = v
	}

	summary, err := json.MarshalIndent(p.Inputs, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode inputs: %w", err)
	}

	language, tag := "Vietnamese", "TIẾNG VIỆT"
	if req.Language == "en" {
		language, tag = "English", "ENGLISH"
	}
	p.System = prompts.BuildSystemPrompt(language, tag)
	p.User = prompts.BuildRequestPrompt(instructions(req.Task, req.Subtype, p.Inputs), string(summary))
	return p, nil
}

// LoadAttachment reads an image file and sniffs its MIME type.
func LoadAttachment(path string) (llm.Attachment, error) {
	info, err := os.Stat(path)
	if err != nil {
		return llm.Attachment{}, fmt.Errorf("read image: %w", err)
	}
	if info.IsDir() {
		return llm.Attachment{}, fmt.Errorf("read image: %s is a directory", path)
	}
	if info.Size() > maxAttachmentSize {
		return llm.Attachment{}, fmt.Errorf("read image: %s is larger than %d MB", path, maxAttachmentSize>>20)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return llm.Attachment{}, fmt.Errorf("read image: %w", err)
	}

	mt := mimetype.Detect(data)
	if !strings.HasPrefix(mt.String(), "image/") {
		return llm.Attachment{}, fmt.Errorf("%s is not an image (%s)", filepath.Base(path), mt.String())
	}

	return llm.Attachment{
		Name:     filepath.Base(path),
		MIMEType: mt.String(),
		Data:     data,
	}, nil
}

func or(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

// instructions renders the task-specific part of the user message.
func instructions(t Task, subtype string, in map[string]string) string {
	switch t {
	case TaskImage:
		return prompts.RenderTask("image", map[string]string{
			"subtype":              subtype,
			"subtype_instructions": prompts.RenderTask("image_"+strings.ToLower(subtype), nil),
		})

	case TaskVideo:
		return videoInstructions(subtype, in)

	case TaskResearch:
		depth := or(in["depth"], "standard")
		return prompts.RenderTask("research", map[string]string{
			"depth":      depth,
			"depth_note": depthNotes[depth],
			"timeframe":  or(in["timeframe"], "current and recent (last 1-2 years)"),
			"format":     or(in["format"], "structured report"),
			"length":     researchLength(depth),
		})

	case TaskOutline:
		return prompts.RenderTask("outline", map[string]string{
			"audience": or(in["audience"], "general"),
			"goal":     or(in["goal"], "informative"),
		})

	case TaskMusic:
		return prompts.RenderTask("music", map[string]string{
			"genre": or(in["genre"], "pop"),
			"mood":  or(in["mood"], "upbeat"),
		})
	}
	return ""
}

var depthNotes = map[string]string{
	"quick":    "Quick overview, key points only, 1-2 pages equivalent",
	"standard": "Balanced analysis, main arguments with evidence, 3-5 pages equivalent",
	"deep":     "Exhaustive deep-dive, multiple perspectives, citations, 10+ pages equivalent",
}

func researchLength(depth string) string {
	switch depth {
	case "quick":
		return "concise (1-2 pages)"
	case "deep":
		return "comprehensive (10+ pages)"
	}
	return "standard (3-5 pages)"
}

// clipCount parses the requested number of clips, defaulting to one.
func clipCount(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 1
	}
	return n
}

func videoInstructions(subtype string, in map[string]string) string {
	duration := or(in["duration"], "5s")
	ratio := or(in["ratio"], "16:9")
	count := clipCount(in["count"])
	motion := or(in["motionIntent"], "subtle")

	var body, fields string
	switch subtype {
	case SubtypeImg2Video:
		lastFrame := ""
		if in["lastFrame"] != "" {
			lastFrame = prompts.RenderTask("video_last_frame", nil)
		}
		body = prompts.RenderTask("video_img2video", map[string]string{
			"motion_intent": motion,
			"last_frame":    lastFrame,
		})
		fields = prompts.RenderTask("video_img2video_fields", map[string]string{"motion_intent": motion})

	case SubtypeExtend:
		consistency := "YES - Keep character/environment/style/audio consistent"
		if in["keepConsistency"] == "false" {
			consistency = "Allow variations"
		}
		body = prompts.RenderTask("video_extend", map[string]string{
			"base_prompt":    or(in["basePrompt"], "No base prompt provided - infer from extension idea"),
			"extension_idea": or(in["extensionIdea"], "Continue the action naturally"),
			"consistency":    consistency,
		})
		fields = prompts.RenderTask("video_extend_fields", nil)

	default:
		multi := ""
		if count > 1 {
			multi = prompts.RenderTask("video_multi", map[string]string{"count": strconv.Itoa(count)})
		}
		body = prompts.RenderTask("video_prompt", map[string]string{
			"duration":    duration,
			"ratio":       ratio,
			"multi_video": multi,
		})
	}

	structure := prompts.RenderTask("video_single_output", map[string]string{
		"duration": duration,
		"ratio":    ratio,
	})
	if count > 1 {
		structure = prompts.RenderTask("video_multi_output", map[string]string{"count": strconv.Itoa(count)})
	}

	return prompts.RenderTask("video", map[string]string{
		"subtype":              subtype,
		"subtype_instructions": body,
		"output_structure":     structure,
		"subtype_fields":       fields,
	})
}
