package templates

import "os"

const configTemplate = `# ondevice configuration
environment: dev

# Relative model and label map paths are resolved against models_dir.
# models_dir: ~/.ondevice/models

model:
  path: ""
  label_map: ""
  # tensorflow, tflite, tensorrt; leave empty to guess from the file name
  format: ""

shot_classification:
  score_threshold: 0.0
  top_k: 0
  input_tensor: image
  output_tensor: scores

frames:
  workers: 4
  frame_rate: 1.0
`

const envTemplate = `# Variables prefixed with ONDEVICE_ override config.yaml keys,
# e.g. ONDEVICE_MODEL_PATH=shots.pb
`

func GetConfigTemplate() string {
	return configTemplate
}

func GetEnvTemplate() string {
	return envTemplate
}

func WriteConfig(path string) error {
	return writeTemplate(path, configTemplate)
}

func WriteEnv(path string) error {
	return writeTemplate(path, envTemplate)
}

func writeTemplate(path, content string) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	_, err = file.WriteString(content)
	if err != nil {
		return err
	}

	return nil
}
