package translator

import (
	"fmt"

	"fluxprompt/internal/extractor"
	"fluxprompt/internal/params"
	"fluxprompt/internal/postprocess"
)

// systemPrompt instructs the model to turn a Chinese scene description into
// Flux Dev CLIP generation parameters.
const systemPrompt = `你是一名专业的提示工程师，负责生成适用于 Flux Dev AI 基于 CLIP 的图像生成参数。

当收到用户的中文描述时，请按照以下要求输出**唯一**的 JSON 对象，不要添加任何多余说明：

1. **positive_prompt**：一个简洁的、用逗号分隔的英文关键词和短短语列表（最长约 77 个 token），精确描述要包含的内容（物体、构图、风格、光照、色彩、情绪、视角、细节），以优化 CLIP 嵌入——只用清晰的名词和形容词，不用填充词。
2. **negative_prompt**：一个用逗号分隔的英文关键词列表，列出需要排除的不良元素或伪影（噪点、扭曲、不想要的物体等），同样针对 CLIP 嵌入优化——只用简单的名词和形容词。
3. **num_images**：用户需要生成的图像数量，范围 1–4；默认 1，如果描述中未提及或超出范围则置为 1。
4. **steps**：采样步数，范围 15–50；默认 15，如果描述中提及“步骤”且数值有效则使用该值，若小于 15 则置为 15，若大于 50 则置为 50。
5. **cfg**：CLIP 引导强度，范围 1.0–15.0；默认 5.0，如果描述中提及“cfg”且数值有效则使用该值，若小于 1.0 则置为 5.0，若大于 15.0 则置为 15.0。

示例输出格式（仅 JSON，不要解释）：

` + "```json" + `
{
  "positive_prompt": "sunset over mountain lake, warm golden light, misty atmosphere, high detail, panoramic view",
  "negative_prompt": "noise, blur, distorted faces, text, watermarks",
  "num_images": 2,
  "steps": 30,
  "cfg": 7.5
}
` + "```"

// promptFields are the JSON keys the model is instructed to emit.
var promptFields = []string{"positive_prompt", "negative_prompt", "num_images", "steps", "cfg"}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// parsePromptContent turns raw model output into a Prompt: strip artifacts,
// extract the instructed fields, apply defaults and clamps. A response from
// which no positive prompt can be recovered is a format error.
func parsePromptContent(content string) (params.Prompt, error) {
	cleaned := postprocess.Clean(content)
	fields := extractor.Extract(cleaned, promptFields)

	p := params.FromFields(fields)
	if p.Positive == "" {
		return p, fmt.Errorf("%w: no positive_prompt in model output", ErrMalformedResponse)
	}
	return p, nil
}
