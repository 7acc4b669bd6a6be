package whisperx

// Config captures runtime settings for WhisperX operations.
type Config struct {
	ModelDir    string // weight cache passed as --model_dir
	WorkDir     string // parent of per-call output dirs; empty uses the OS temp dir
	Language    string // code or name known to the language package, or "auto"
	CUDAEnabled bool
	VADMethod   string // VADMethodSilero (default) or VADMethodPyannote
	HFToken     string // required by pyannote
	Warmup      bool   // run `whisperx --help` in Load so the uvx cache is hot
	HideWindow  bool
}

const (
	UVXCommand = "uvx"

	PypiIndexURL = "https://pypi.org/simple"
	CUDAIndexURL = "https://download.pytorch.org/whl/cu128"

	CPUDevice      = "cpu"
	CUDADevice     = "cuda"
	CPUComputeType = "float32"

	VADMethodSilero   = "silero"
	VADMethodPyannote = "pyannote"
)

// decodeFlags are passed on every transcription, in order.
var decodeFlags = []string{
	"--output_format", "json",
	"--segment_resolution", "sentence",
	"--batch_size", "4",
	"--chunk_size", "15",
	"--vad_onset", "0.08",
	"--vad_offset", "0.07",
	"--beam_size", "10",
	"--best_of", "10",
	"--temperature", "0.0",
	"--patience", "1.0",
}

// torch 2.6 defaults torch.load to weights_only, which rejects the pyannote
// and WhisperX checkpoints.
const torchEnv = "TORCH_FORCE_NO_WEIGHTS_ONLY_LOAD=1"
