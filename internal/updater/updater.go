package updater

import (
	"archive/tar"
	"bufio"
	"compress/gzip"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/hashicorp/go-version"
)

const (
	githubAPIURL       = "https://api.github.com/repos/schemadrift/schemadrift/releases/latest"
	checkInterval      = 6 * time.Hour
	updateCheckTimeout = 10 * time.Second
)

// Updater handles auto-updates for schemadrift
type Updater struct {
	currentVersion string
}

// New creates a new updater instance
func New(currentVersion string) *Updater {
	return &Updater{
		currentVersion: currentVersion,
	}
}

// CheckForUpdate checks if a newer version is available
func (u *Updater) CheckForUpdate() (*UpdateInfo, error) {
	client := &http.Client{
		Timeout: updateCheckTimeout,
	}

	resp, err := client.Get(githubAPIURL)
	if err != nil {
		return nil, fmt.Errorf("failed to check for updates: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GitHub API returned status %d", resp.StatusCode)
	}

	var release GitHubRelease
	if err := json.NewDecoder(resp.Body).Decode(&release); err != nil {
		return nil, fmt.Errorf("failed to parse release info: %w", err)
	}

	// Remove 'v' prefix from tag if present
	latestVersion := strings.TrimPrefix(release.TagName, "v")

	current, err := version.NewVersion(u.currentVersion)
	if err != nil {
		return nil, fmt.Errorf("invalid current version: %w", err)
	}

	latest, err := version.NewVersion(latestVersion)
	if err != nil {
		return nil, fmt.Errorf("invalid latest version: %w", err)
	}

	return &UpdateInfo{
		CurrentVersion:  u.currentVersion,
		LatestVersion:   latestVersion,
		UpdateAvailable: latest.GreaterThan(current),
		ReleaseURL:      release.HTMLURL,
		Assets:          release.Assets,
	}, nil
}

// DownloadAndInstall downloads and installs the update
func (u *Updater) DownloadAndInstall(updateInfo *UpdateInfo) error {
	executable, err := os.Executable()
	if err != nil {
		return fmt.Errorf("failed to get executable path: %w", err)
	}

	executable, err = filepath.EvalSymlinks(executable)
	if err != nil {
		return fmt.Errorf("failed to resolve symlinks: %w", err)
	}

	if !canWrite(executable) {
		return fmt.Errorf("insufficient permissions to update binary at %s\nConsider running 'schemadrift migrate' to move to user directory", executable)
	}

	// Find the appropriate binary for this platform
	binaryName := u.getBinaryName()
	var asset *Asset
	for i := range updateInfo.Assets {
		if strings.Contains(updateInfo.Assets[i].Name, binaryName) {
			asset = &updateInfo.Assets[i]
			break
		}
	}

	if asset == nil {
		return fmt.Errorf("no binary found for platform: %s-%s", runtime.GOOS, runtime.GOARCH)
	}

	tmpDir, err := os.MkdirTemp("", "schemadrift-update-*")
	if err != nil {
		return fmt.Errorf("failed to create temp directory: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	tmpFile := filepath.Join(tmpDir, asset.Name)
	if err := u.downloadFile(tmpFile, asset.BrowserDownloadURL); err != nil {
		return fmt.Errorf("failed to download update: %w", err)
	}

	// Verify against checksums.txt when the release ships one
	if err := u.verifyAsset(updateInfo, asset, tmpFile, tmpDir); err != nil {
		return err
	}

	// Extract if it's an archive
	var binaryPath string
	if strings.HasSuffix(asset.Name, ".tar.gz") {
		binaryPath, err = u.extractTarGz(tmpFile, tmpDir)
		if err != nil {
			return fmt.Errorf("failed to extract archive: %w", err)
		}
	} else {
		binaryPath = tmpFile
	}

	// Backup current binary
	backupPath := executable + ".backup"
	if err := copyFile(executable, backupPath); err != nil {
		return fmt.Errorf("failed to backup current binary: %w", err)
	}

	// Replace binary
	if err := copyFile(binaryPath, executable); err != nil {
		// Rollback
		copyFile(backupPath, executable)
		return fmt.Errorf("failed to install update: %w", err)
	}

	if err := os.Chmod(executable, 0755); err != nil {
		// Rollback
		copyFile(backupPath, executable)
		return fmt.Errorf("failed to set permissions: %w", err)
	}

	os.Remove(backupPath)

	return nil
}

// ShouldCheckForUpdate determines if we should check for updates
func (u *Updater) ShouldCheckForUpdate(lastCheck time.Time) bool {
	return time.Since(lastCheck) > checkInterval
}

// getBinaryName returns the expected binary name for the current platform
func (u *Updater) getBinaryName() string {
	return fmt.Sprintf("schemadrift-%s-%s", runtime.GOOS, runtime.GOARCH)
}

// verifyAsset checks the downloaded file against the release's checksums.txt.
// Releases without one are accepted as is.
func (u *Updater) verifyAsset(updateInfo *UpdateInfo, asset *Asset, downloadedPath, tmpDir string) error {
	var checksums *Asset
	for i := range updateInfo.Assets {
		if updateInfo.Assets[i].Name == "checksums.txt" {
			checksums = &updateInfo.Assets[i]
			break
		}
	}
	if checksums == nil {
		return nil
	}

	checksumFile := filepath.Join(tmpDir, "checksums.txt")
	if err := u.downloadFile(checksumFile, checksums.BrowserDownloadURL); err != nil {
		return fmt.Errorf("failed to download checksums: %w", err)
	}

	expected, err := checksumFor(checksumFile, asset.Name)
	if err != nil {
		return err
	}

	if err := verifySHA256(downloadedPath, expected); err != nil {
		return fmt.Errorf("failed to verify download: %w", err)
	}

	return nil
}

// checksumFor finds the checksum entry for a file name. Lines follow the
// sha256sum format: "<hex>  <name>".
func checksumFor(checksumFile, name string) (string, error) {
	f, err := os.Open(checksumFile)
	if err != nil {
		return "", err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 2 && fields[1] == name {
			return fields[0], nil
		}
	}
	if err := scanner.Err(); err != nil {
		return "", err
	}

	return "", fmt.Errorf("no checksum entry for %s", name)
}

// downloadFile downloads a file from a URL
func (u *Updater) downloadFile(filepath string, url string) error {
	resp, err := http.Get(url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download failed with status: %d", resp.StatusCode)
	}

	out, err := os.Create(filepath)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, resp.Body)
	return err
}

// extractTarGz extracts a .tar.gz file and returns the path to the binary
func (u *Updater) extractTarGz(archivePath, destDir string) (string, error) {
	file, err := os.Open(archivePath)
	if err != nil {
		return "", err
	}
	defer file.Close()

	gzr, err := gzip.NewReader(file)
	if err != nil {
		return "", err
	}
	defer gzr.Close()

	tr := tar.NewReader(gzr)

	var binaryPath string
	for {
		header, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}

		target := filepath.Join(destDir, header.Name)

		switch header.Typeflag {
		case tar.TypeReg:
			f, err := os.OpenFile(target, os.O_CREATE|os.O_RDWR, os.FileMode(header.Mode))
			if err != nil {
				return "", err
			}
			if _, err := io.Copy(f, tr); err != nil {
				f.Close()
				return "", err
			}
			f.Close()

			// This is likely our binary
			if strings.Contains(header.Name, "schemadrift") && !strings.Contains(header.Name, ".tar.gz") {
				binaryPath = target
			}
		}
	}

	if binaryPath == "" {
		return "", fmt.Errorf("binary not found in archive")
	}

	return binaryPath, nil
}

// canWrite checks if we have write permission to a file
func canWrite(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}

	f, err := os.OpenFile(path, os.O_WRONLY, info.Mode())
	if err != nil {
		return false
	}
	f.Close()
	return true
}

// copyFile copies a file from src to dst
func copyFile(src, dst string) error {
	sourceFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer sourceFile.Close()

	destFile, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer destFile.Close()

	if _, err := io.Copy(destFile, sourceFile); err != nil {
		return err
	}

	sourceInfo, err := os.Stat(src)
	if err != nil {
		return err
	}

	return os.Chmod(dst, sourceInfo.Mode())
}

// verifySHA256 verifies the SHA256 checksum of a file
func verifySHA256(filePath, expectedChecksum string) error {
	file, err := os.Open(filePath)
	if err != nil {
		return err
	}
	defer file.Close()

	hash := sha256.New()
	if _, err := io.Copy(hash, file); err != nil {
		return err
	}

	actualChecksum := hex.EncodeToString(hash.Sum(nil))
	if actualChecksum != expectedChecksum {
		return fmt.Errorf("checksum mismatch: expected %s, got %s", expectedChecksum, actualChecksum)
	}

	return nil
}

// GetInstallLocation returns the current installation path and whether it's user-writable
func GetInstallLocation() (path string, writable bool, err error) {
	executable, err := os.Executable()
	if err != nil {
		return "", false, err
	}

	executable, err = filepath.EvalSymlinks(executable)
	if err != nil {
		return "", false, err
	}

	return executable, canWrite(executable), nil
}

// IsSystemInstallation checks if schemadrift is installed in a system directory
func IsSystemInstallation() bool {
	path, _, err := GetInstallLocation()
	if err != nil {
		return false
	}

	systemPaths := []string{
		"/usr/local/bin",
		"/usr/bin",
		"/bin",
		"C:\\Program Files",
	}

	for _, sysPath := range systemPaths {
		if strings.HasPrefix(path, sysPath) {
			return true
		}
	}

	return false
}
