// Command genconfig writes starter config.yaml and .env.example files for a
// new checkout. Existing files are left alone unless -force is given.
//
// Usage:
//
//	go run ./cmd/genconfig
//	go run ./cmd/genconfig -dir deploy/qa -force
package main

import (
	"flag"
	"log"
	"os"
	"path/filepath"
)

const configYAML = `# Suite configuration. Environment variables override every value here;
# see .env.example for the variable names.

app_title: "Olympus Medical Software Delivery"

environments:
  qa:
    base_url: "https://qa.omsd.example.com"
  staging:
    base_url: "https://staging.omsd.example.com"

browser:
  name: chrome
  headless: true
  viewport_width: 1920
  viewport_height: 1080
  ignore_https_errors: true
  # slow_mo: 250ms

timeouts:
  implicit_wait: 15s
  explicit_wait: 30s
  navigation_timeout: 60s

artifacts:
  screenshot_dir: screenshots
  video_dir: videos
  trace_dir: traces

otp:
  email: ""
  imap_server: imap.gmail.com
  imap_port: 993
  subject_filter: "verification code"
  timeout: 60s
  poll_interval: 5s

# Usernames may live here; set passwords through the {ROLE}_PASSWORD
# environment variables instead of committing them.
credentials:
  software_uploader:
    username: ""
  distribution_manager:
    username: ""
  distribution_manager_without_permission:
    username: ""
  device_update_executor:
    username: ""
  device_update_executor_without_permission:
    username: ""
  customer:
    username: ""

database:
  server: ""
  name: ""
  username: ""

uploads:
  software_package: testdata/uploads/package.zip

notify:
  from: ""
  to: ""
`

const envExample = `# Copy to .env and fill in. Values here override config.yaml.

APP_ENV=qa
# {ENV}_BASE_URL beats BASE_URL, which beats the YAML environments block.
#BASE_URL=https://qa.omsd.example.com
#QA_BASE_URL=

# Browser
#BROWSER=chrome
#HEADLESS=true
#IGNORE_HTTPS_ERRORS=true
#VIDEO=false
#TRACING=false
#SLOW_MO=250ms

# Waits
#IMPLICIT_WAIT=15s
#EXPLICIT_WAIT=30s
#NAVIGATION_TIMEOUT=60s

# Artifact directories
#SCREENSHOT_DIR=screenshots
#VIDEO_DIR=videos
#TRACE_DIR=traces

# Verification code mailbox
OTP_EMAIL=
OTP_EMAIL_PASSWORD=
IMAP_SERVER=imap.gmail.com
#IMAP_PORT=993
#OTP_SUBJECT_FILTER=verification code
#OTP_TIMEOUT=60s
#OTP_POLL_INTERVAL=5s

# Role credentials
SOFTWARE_UPLOADER_USERNAME=
SOFTWARE_UPLOADER_PASSWORD=
DISTRIBUTION_MANAGER_USERNAME=
DISTRIBUTION_MANAGER_PASSWORD=
DISTRIBUTION_MANAGER_WITHOUT_PERMISSION_USERNAME=
DISTRIBUTION_MANAGER_WITHOUT_PERMISSION_PASSWORD=
DEVICE_UPDATE_EXECUTOR_USERNAME=
DEVICE_UPDATE_EXECUTOR_PASSWORD=
DEVICE_UPDATE_EXECUTOR_WITHOUT_PERMISSION_USERNAME=
DEVICE_UPDATE_EXECUTOR_WITHOUT_PERMISSION_PASSWORD=
CUSTOMER_USERNAME=
CUSTOMER_PASSWORD=

# Application database (validated and handed to fixtures, never dialed)
#DB_SERVER=
#DB_NAME=
#DB_USERNAME=
#DB_PASSWORD=

# Test upload files
#UPLOAD_SOFTWARE_PACKAGE_PATH=testdata/uploads/package.zip

# Artifact upload to S3-compatible storage
#AWS_ENDPOINT_URL_S3=
#AWS_REGION=auto
#AWS_ACCESS_KEY_ID=
#AWS_SECRET_ACCESS_KEY=
#ARTIFACT_BUCKET=

# Run report email
#RESEND_API_KEY=
#NOTIFY_FROM_EMAIL=
#NOTIFY_TO_EMAIL=
`

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	dir := flag.String("dir", ".", "directory to write the files into")
	force := flag.Bool("force", false, "overwrite existing files")
	flag.Parse()

	if err := os.MkdirAll(*dir, 0755); err != nil {
		log.Fatalf("Failed to create output directory: %v", err)
	}

	files := []struct {
		Name    string
		Content string
	}{
		{"config.yaml", configYAML},
		{".env.example", envExample},
	}

	for _, f := range files {
		outPath := filepath.Join(*dir, f.Name)
		if _, err := os.Stat(outPath); err == nil && !*force {
			log.Printf("Skipping %s: already exists (use -force to overwrite)", outPath)
			continue
		}
		if err := os.WriteFile(outPath, []byte(f.Content), 0644); err != nil {
			log.Fatalf("Failed to write %s: %v", outPath, err)
		}
		log.Printf("Generated: %s", outPath)
	}
}
