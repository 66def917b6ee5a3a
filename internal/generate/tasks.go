package generate

import (
	"github.com/sant0-9/promptcraft/internal/catalog"
)

// Task is a guided generation mode.
type Task string

const (
	TaskResearch Task = "RESEARCH"
	TaskImage    Task = "IMAGE"
	TaskVideo    Task = "VIDEO"
	TaskOutline  Task = "OUTLINE"
	TaskMusic    Task = "MUSIC"
)

// Tasks lists the guided modes in menu order.
var Tasks = []Task{TaskImage, TaskVideo, TaskResearch, TaskOutline, TaskMusic}

// Subtypes of the IMAGE and VIDEO tasks. Other tasks use SubtypeDefault.
const (
	SubtypeDefault   = "default"
	SubtypeGenerate  = "Generate"
	SubtypeAnalyze   = "Analyze"
	SubtypeCompose   = "Compose"
	SubtypePrompt    = "Prompt"
	SubtypeImg2Video = "Img2Video"
	SubtypeExtend    = "Extend"
)

// Label returns the task name shown in menus.
func (t Task) Label(lang string) string {
	switch t {
	case TaskResearch:
		return catalog.Localize(lang, "Nghiên cứu", "Research")
	case TaskImage:
		return catalog.Localize(lang, "Ảnh", "Image")
	case TaskVideo:
		return "Video"
	case TaskOutline:
		return catalog.Localize(lang, "Dàn ý", "Outline")
	case TaskMusic:
		return catalog.Localize(lang, "Âm nhạc", "Music")
	}
	return string(t)
}

// Valid reports whether t is a known task.
func (t Task) Valid() bool {
	for _, k := range Tasks {
		if k == t {
			return true
		}
	}
	return false
}

// Subtypes returns the subtypes offered for t.
func (t Task) Subtypes() []string {
	switch t {
	case TaskImage:
		return []string{SubtypeGenerate, SubtypeAnalyze, SubtypeCompose}
	case TaskVideo:
		return []string{SubtypePrompt, SubtypeImg2Video, SubtypeExtend}
	}
	return []string{SubtypeDefault}
}

// DefaultSubtype returns the subtype selected when t is opened.
func DefaultSubtype(t Task) string {
	return t.Subtypes()[0]
}

// SubtypeLabel returns the tab title of a subtype.
func SubtypeLabel(subtype, lang string) string {
	switch subtype {
	case SubtypeGenerate:
		return catalog.Localize(lang, "Tạo mới", "Generate")
	case SubtypeAnalyze:
		return catalog.Localize(lang, "Phân tích ảnh", "Analyze")
	case SubtypeCompose:
		return catalog.Localize(lang, "Ghép ảnh", "Compose")
	case SubtypePrompt:
		return catalog.Localize(lang, "Từ mô tả", "Text to video")
	case SubtypeImg2Video:
		return catalog.Localize(lang, "Từ ảnh", "Image to video")
	case SubtypeExtend:
		return catalog.Localize(lang, "Nối video", "Extend")
	}
	return subtype
}

func choices(values ...string) []catalog.Choice {
	out := make([]catalog.Choice, len(values))
	for i, v := range values {
		out[i] = catalog.Choice{Value: v}
	}
	return out
}

func toggle(key, vi, en, def string) catalog.Variable {
	return catalog.Variable{
		Key: key, Label: vi, LabelEn: en, Kind: catalog.KindSelect, Default: def, Optional: true,
		Options: []catalog.Choice{
			{Value: "false", Label: "Không", LabelEn: "No"},
			{Value: "true", Label: "Có", LabelEn: "Yes"},
		},
	}
}

func image(key, vi, en string) catalog.Variable {
	return catalog.Variable{
		Key: key, Label: vi, LabelEn: en, Kind: catalog.KindImage, Optional: true,
		Placeholder: "đường dẫn tới tệp ảnh", PlaceholderEn: "path to an image file",
	}
}

var imageCommon = []catalog.Variable{
	{Key: "style", Label: "Phong cách", LabelEn: "Style", Kind: catalog.KindSelect, Optional: true,
		Options: append([]catalog.Choice{{Value: "", Label: "Tự chọn", LabelEn: "Any"}},
			choices("photorealistic", "anime", "oil painting", "3d render")...)},
	{Key: "ratio", Label: "Tỉ lệ", LabelEn: "Aspect ratio", Kind: catalog.KindSelect, Default: "1:1",
		Options: choices("1:1", "16:9", "9:16", "4:3", "3:4")},
	toggle("inspire", "Thêm ý tưởng sáng tạo", "Add creative ideas", "false"),
}

// Fields returns the guided form for a task and subtype.
func Fields(t Task, subtype string) []catalog.Variable {
	var fields []catalog.Variable

	switch t {
	case TaskResearch:
		fields = []catalog.Variable{
			{Key: "topic", Label: "Chủ đề nghiên cứu", LabelEn: "Research topic", Kind: catalog.KindTextarea,
				Placeholder: "VD: Xu hướng xe điện tại Đông Nam Á", PlaceholderEn: "e.g. EV adoption in Southeast Asia"},
			{Key: "depth", Label: "Độ sâu", LabelEn: "Depth", Kind: catalog.KindSelect, Default: "standard",
				Options: []catalog.Choice{
					{Value: "quick", Label: "Nhanh", LabelEn: "Quick"},
					{Value: "standard", Label: "Tiêu chuẩn", LabelEn: "Standard"},
					{Value: "deep", Label: "Chuyên sâu", LabelEn: "Deep"},
				}},
			{Key: "timeframe", Label: "Khung thời gian", LabelEn: "Timeframe", Kind: catalog.KindText, Optional: true,
				Placeholder: "VD: 2020-2025", PlaceholderEn: "e.g. 2020-2025"},
			{Key: "format", Label: "Định dạng kết quả", LabelEn: "Output format", Kind: catalog.KindText, Optional: true,
				Placeholder: "VD: báo cáo, bảng so sánh", PlaceholderEn: "e.g. report, comparison table"},
		}

	case TaskImage:
		switch subtype {
		case SubtypeCompose:
			fields = []catalog.Variable{
				image("contextImg", "Ảnh bối cảnh", "Context image"),
				image("charImg", "Ảnh nhân vật", "Character image"),
				image("outfitImg", "Ảnh trang phục", "Outfit image"),
				image("poseImg", "Ảnh tư thế", "Pose image"),
				{Key: "description", Label: "Ghi chú thêm", LabelEn: "Extra notes", Kind: catalog.KindTextarea, Optional: true},
			}
		case SubtypeAnalyze:
			fields = []catalog.Variable{
				image("originalImg", "Ảnh gốc", "Original image"),
				toggle("useRefFace", "Giữ khuôn mặt tham chiếu", "Keep the reference face", "false"),
				{Key: "description", Label: "Muốn thay đổi gì?", LabelEn: "What should change?", Kind: catalog.KindTextarea, Optional: true,
					Placeholder: "VD: đổi nền thành bãi biển", PlaceholderEn: "e.g. swap the background for a beach"},
			}
		default:
			fields = []catalog.Variable{
				{Key: "description", Label: "Mô tả ảnh", LabelEn: "Image description", Kind: catalog.KindTextarea,
					Placeholder: "VD: cô gái đứng dưới mưa neon", PlaceholderEn: "e.g. a girl standing in neon rain"},
			}
		}
		fields = append(fields, imageCommon...)

	case TaskVideo:
		switch subtype {
		case SubtypeImg2Video:
			fields = []catalog.Variable{
				image("firstFrame", "Khung hình đầu", "First frame"),
				image("lastFrame", "Khung hình cuối", "Last frame"),
				{Key: "description", Label: "Mô tả chuyển động", LabelEn: "Motion description", Kind: catalog.KindTextarea, Optional: true},
				{Key: "motionIntent", Label: "Mức chuyển động", LabelEn: "Motion intent", Kind: catalog.KindSelect, Default: "subtle",
					Options: []catalog.Choice{
						{Value: "subtle", Label: "Nhẹ", LabelEn: "Subtle"},
						{Value: "medium", Label: "Vừa", LabelEn: "Medium"},
						{Value: "dynamic", Label: "Mạnh", LabelEn: "Dynamic"},
					}},
			}
		case SubtypeExtend:
			fields = []catalog.Variable{
				{Key: "basePrompt", Label: "Prompt video trước", LabelEn: "Previous video prompt", Kind: catalog.KindTextarea, Optional: true},
				toggle("keepConsistency", "Giữ nhất quán", "Keep consistency", "true"),
				{Key: "extensionIdea", Label: "Ý tưởng nối tiếp", LabelEn: "Extension idea", Kind: catalog.KindTextarea, Optional: true,
					Placeholder: "VD: nhân vật quay lại nhìn máy quay", PlaceholderEn: "e.g. the character turns to the camera"},
			}
		default:
			fields = []catalog.Variable{
				{Key: "description", Label: "Ý tưởng chính", LabelEn: "Main idea", Kind: catalog.KindTextarea,
					Placeholder: "VD: chú mèo phi hành gia trôi trong không gian", PlaceholderEn: "e.g. an astronaut cat floating in space"},
				{Key: "context", Label: "Bối cảnh", LabelEn: "Setting", Kind: catalog.KindText, Optional: true},
				{Key: "subject", Label: "Nhân vật", LabelEn: "Subject", Kind: catalog.KindText, Optional: true},
				{Key: "audio_general", Label: "Âm thanh", LabelEn: "Audio", Kind: catalog.KindText, Optional: true},
				{Key: "duration", Label: "Thời lượng", LabelEn: "Duration", Kind: catalog.KindSelect, Default: "5s",
					Options: choices("5s", "8s", "10s")},
				{Key: "ratio", Label: "Tỉ lệ", LabelEn: "Aspect ratio", Kind: catalog.KindSelect, Default: "16:9",
					Options: choices("16:9", "9:16", "1:1")},
				{Key: "count", Label: "Số video", LabelEn: "Clip count", Kind: catalog.KindSelect, Default: "1",
					Options: choices("1", "2", "3", "4")},
				{Key: "camera_angle", Label: "Góc máy", LabelEn: "Camera angle", Kind: catalog.KindSelect, Optional: true,
					Options: append(choices(""), choices("wide", "medium", "closeup", "pov", "drone")...)},
				{Key: "camera_motion", Label: "Chuyển động máy", LabelEn: "Camera motion", Kind: catalog.KindSelect, Optional: true,
					Options: append(choices(""), choices("static", "pan_left", "pan_right", "zoom_in", "dolly", "handheld")...)},
				{Key: "lighting", Label: "Ánh sáng", LabelEn: "Lighting", Kind: catalog.KindText, Optional: true},
				{Key: "style", Label: "Phong cách", LabelEn: "Style", Kind: catalog.KindText, Optional: true},
				{Key: "audio_detailed", Label: "Âm thanh chi tiết", LabelEn: "Detailed audio", Kind: catalog.KindText, Optional: true},
				{Key: "negative", Label: "Tránh", LabelEn: "Negative prompt", Kind: catalog.KindText, Optional: true},
			}
		}

	case TaskOutline:
		fields = []catalog.Variable{
			{Key: "topic", Label: "Chủ đề", LabelEn: "Topic", Kind: catalog.KindTextarea},
			{Key: "audience", Label: "Đối tượng", LabelEn: "Audience", Kind: catalog.KindText, Optional: true},
			{Key: "goal", Label: "Mục tiêu", LabelEn: "Goal", Kind: catalog.KindText, Optional: true},
			toggle("auto_fill", "Tự điền phần thiếu", "Auto-fill gaps", "false"),
		}

	case TaskMusic:
		fields = []catalog.Variable{
			{Key: "topic", Label: "Chủ đề bài hát", LabelEn: "Song topic", Kind: catalog.KindTextarea},
			{Key: "genre", Label: "Thể loại", LabelEn: "Genre", Kind: catalog.KindText, Optional: true,
				Placeholder: "VD: pop, lo-fi, rock", PlaceholderEn: "e.g. pop, lo-fi, rock"},
			{Key: "mood", Label: "Cảm xúc", LabelEn: "Mood", Kind: catalog.KindText, Optional: true},
			toggle("suno_ready", "Định dạng cho Suno", "Suno-ready format", "false"),
		}
	}

	return fields
}

// FieldDefaults returns the pre-filled values of a guided form.
func FieldDefaults(t Task, subtype string) map[string]string {
	out := make(map[string]string)
	for _, f := range Fields(t, subtype) {
		if f.Default != "" {
			out[f.Key] = f.Default
		}
	}
	return out
}
