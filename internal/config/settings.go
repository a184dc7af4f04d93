// Package config loads the application settings file and the bootstrap
// logging taken from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"fjacquet/ar-clearing/internal/configerror"
	"fjacquet/ar-clearing/internal/dateutils"
	"fjacquet/ar-clearing/internal/logging"
	"fjacquet/ar-clearing/internal/placeholder"
	"fjacquet/ar-clearing/internal/validation"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment variables overriding settings keys,
// e.g. ARCLEAR_SAP_SYSTEM overrides sap.system
const EnvPrefix = "ARCLEAR"

// SubjectDateFormat renders $date$ in notification subjects
const SubjectDateFormat = "%d-%b-%Y"

// SAP system codes
var sapSystems = map[string]string{
	"P25": "OG ERP: P25 Productive SSO",
	"Q25": "OG ERP: Q25 Quality Assurance SSO",
}

// Settings is the parsed application settings file
type Settings struct {
	SAP      SAP      `mapstructure:"sap" yaml:"sap"`
	Clearing Clearing `mapstructure:"clearing" yaml:"clearing"`
	Recovery Recovery `mapstructure:"recovery" yaml:"recovery"`
	Data     Data     `mapstructure:"data" yaml:"data"`
	Reports  Reports  `mapstructure:"reports" yaml:"reports"`
	Mails    Mails    `mapstructure:"mails" yaml:"mails"`

	source string
	appDir string
}

// SAP holds the SAP GUI connection parameters and report layouts
type SAP struct {
	System      string `mapstructure:"system" yaml:"system" validate:"required,oneof=P25 Q25"`
	GUIPath     string `mapstructure:"gui_path" yaml:"gui_path"`
	FBL5NLayout string `mapstructure:"fbl5n_layout" yaml:"fbl5n_layout"`
	DMSLayout   string `mapstructure:"dms_layout" yaml:"dms_layout"`
	F30Layout   string `mapstructure:"f30_layout" yaml:"f30_layout"`
}

// Clearing locates the rules file and lists the non-working days
type Clearing struct {
	RulesPath string              `mapstructure:"rules_path" yaml:"rules_path" validate:"required"`
	Holidays  []dateutils.Holiday `mapstructure:"holidays" yaml:"holidays"`
}

// Recovery names the file keeping the state of an interrupted run
type Recovery struct {
	RecoveryName string `mapstructure:"recovery_name" yaml:"recovery_name"`
}

// Data holds the working directories and the data file name templates
type Data struct {
	DataDir              string `mapstructure:"data_dir" yaml:"data_dir"`
	DumpDir              string `mapstructure:"dump_dir" yaml:"dump_dir"`
	TempDir              string `mapstructure:"temp_dir" yaml:"temp_dir"`
	FBL5NExportDir       string `mapstructure:"fbl5n_export_dir" yaml:"fbl5n_export_dir"`
	DMSExportDir         string `mapstructure:"dms_export_dir" yaml:"dms_export_dir"`
	FBL5NDataExportName  string `mapstructure:"fbl5n_data_export_name" yaml:"fbl5n_data_export_name"`
	FBL5NDataBinaryName  string `mapstructure:"fbl5n_data_binary_name" yaml:"fbl5n_data_binary_name"`
	DMSDataExportName    string `mapstructure:"dms_data_export_name" yaml:"dms_data_export_name"`
	DMSDataBinaryName    string `mapstructure:"dms_data_binary_name" yaml:"dms_data_binary_name"`
	CustomerDataName     string `mapstructure:"customer_data_name" yaml:"customer_data_name"`
	ConsolidatedDataName string `mapstructure:"consolidated_data_name" yaml:"consolidated_data_name"`
	ClearingInputName    string `mapstructure:"clearing_input_name" yaml:"clearing_input_name"`
	MatchedDataName      string `mapstructure:"matched_data_name" yaml:"matched_data_name"`
	AnalyzedDataName     string `mapstructure:"analyzed_data_name" yaml:"analyzed_data_name"`
	ClearingOutputName   string `mapstructure:"clearing_output_name" yaml:"clearing_output_name"`
	DMSClosingOutputName string `mapstructure:"dms_closing_output_name" yaml:"dms_closing_output_name"`
	QMClosingOutputName  string `mapstructure:"qm_closing_output_name" yaml:"qm_closing_output_name"`
}

// Reports holds where user reports are written and published
type Reports struct {
	LocalDir        string `mapstructure:"local_dir" yaml:"local_dir"`
	NetDir          string `mapstructure:"net_dir" yaml:"net_dir"`
	NetSubdirFormat string `mapstructure:"net_subdir_format" yaml:"net_subdir_format"`
	Name            string `mapstructure:"name" yaml:"name"`
}

// Mails groups the request mailbox and the notification settings
type Mails struct {
	Requests      Requests      `mapstructure:"requests" yaml:"requests"`
	Notifications Notifications `mapstructure:"notifications" yaml:"notifications"`
}

// Requests is the mailbox users send clearing requests to
type Requests struct {
	Mailbox string `mapstructure:"mailbox" yaml:"mailbox" validate:"omitempty,email"`
	Account string `mapstructure:"account" yaml:"account"`
	Server  string `mapstructure:"server" yaml:"server"`
}

// Notifications configures the result e-mails
type Notifications struct {
	Send             bool   `mapstructure:"send" yaml:"send"`
	Sender           string `mapstructure:"sender" yaml:"sender" validate:"required_if=Send true,omitempty,email"`
	Subject          string `mapstructure:"subject" yaml:"subject"`
	Host             string `mapstructure:"host" yaml:"host" validate:"required_if=Send true"`
	Port             int    `mapstructure:"port" yaml:"port" validate:"gte=0,lte=65535"`
	TeamTemplatePath string `mapstructure:"team_template_path" yaml:"team_template_path"`
	UserTemplatePath string `mapstructure:"user_template_path" yaml:"user_template_path"`
	HTMLEmailPath    string `mapstructure:"html_email_path" yaml:"html_email_path"`
}

// Scope carries the per-entity values of file name templates
type Scope struct {
	Entity      string
	CompanyCode string
}

// NamedPath is a resolved file or directory path with the key it came from
type NamedPath struct {
	Key  string `csv:"key"`
	Path string `csv:"path"`
}

// LoadSettings reads the settings file at path. Values may be overridden
// with ARCLEAR_ prefixed environment variables.
func LoadSettings(path string, logger logging.Logger) (*Settings, error) {
	if logger == nil {
		logger = logging.Discard()
	}
	log := logger.WithField(logging.FieldFile, path)
	log.Info("Loading application settings")

	v := viper.New()
	setDefaults(v)
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read settings: %w", err)
		}
		return nil, configerror.NewParseError(path, err)
	}

	var s Settings
	hook := mapstructure.ComposeDecodeHookFunc(
		holidayHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	)
	if err := v.Unmarshal(&s, viper.DecodeHook(hook)); err != nil {
		return nil, &configerror.ValidationError{Source: path, Reason: err.Error()}
	}
	s.source = path

	if err := s.Validate(); err != nil {
		return nil, err
	}

	log.Info("Application settings loaded",
		logging.F("sap_system", s.SAP.System),
		logging.F("holidays", len(s.Clearing.Holidays)))
	return &s, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("sap.system", "P25")
	v.SetDefault("recovery.recovery_name", "recovery.json")
	v.SetDefault("reports.net_subdir_format", "%Y-%m")
	v.SetDefault("mails.notifications.send", false)
	v.SetDefault("mails.notifications.port", 25)
}

// holidayHookFunc decodes YYYY-MM-DD strings (or dates already parsed by
// the YAML reader) into dateutils.Holiday values
func holidayHookFunc() mapstructure.DecodeHookFuncType {
	holidayType := reflect.TypeOf(dateutils.Holiday{})
	return func(_ reflect.Type, t reflect.Type, data interface{}) (interface{}, error) {
		if t != holidayType {
			return data, nil
		}
		switch v := data.(type) {
		case string:
			return dateutils.ParseHoliday(v)
		case time.Time:
			return dateutils.Holiday{
				Year:  v.Year(),
				Month: v.Month(),
				Day:   v.Day(),
				Raw:   v.Format(dateutils.DateLayoutISO),
			}, nil
		default:
			return nil, fmt.Errorf("invalid holiday '%v': expected YYYY-MM-DD", data)
		}
	}
}

// template is a settings value that may contain placeholder tokens
type template struct {
	key     string
	value   string
	allowed []string
}

func (s *Settings) templates() []template {
	dirs := []string{placeholder.AppDir}
	names := []string{placeholder.AppDir, placeholder.Entity, placeholder.CompCode}
	return []template{
		{"sap.gui_path", s.SAP.GUIPath, dirs},
		{"clearing.rules_path", s.Clearing.RulesPath, dirs},
		{"recovery.recovery_name", s.Recovery.RecoveryName, dirs},
		{"data.data_dir", s.Data.DataDir, dirs},
		{"data.dump_dir", s.Data.DumpDir, dirs},
		{"data.temp_dir", s.Data.TempDir, dirs},
		{"data.fbl5n_export_dir", s.Data.FBL5NExportDir, dirs},
		{"data.dms_export_dir", s.Data.DMSExportDir, dirs},
		{"data.fbl5n_data_export_name", s.Data.FBL5NDataExportName, names},
		{"data.fbl5n_data_binary_name", s.Data.FBL5NDataBinaryName, names},
		{"data.dms_data_export_name", s.Data.DMSDataExportName, names},
		{"data.dms_data_binary_name", s.Data.DMSDataBinaryName, names},
		{"data.customer_data_name", s.Data.CustomerDataName, names},
		{"data.consolidated_data_name", s.Data.ConsolidatedDataName, names},
		{"data.clearing_input_name", s.Data.ClearingInputName, names},
		{"data.matched_data_name", s.Data.MatchedDataName, names},
		{"data.analyzed_data_name", s.Data.AnalyzedDataName, names},
		{"data.clearing_output_name", s.Data.ClearingOutputName, names},
		{"data.dms_closing_output_name", s.Data.DMSClosingOutputName, names},
		{"data.qm_closing_output_name", s.Data.QMClosingOutputName, names},
		{"reports.local_dir", s.Reports.LocalDir, dirs},
		{"reports.net_dir", s.Reports.NetDir, dirs},
		{"reports.name", s.Reports.Name, names},
		{"mails.notifications.subject", s.Mails.Notifications.Subject, []string{placeholder.Date}},
		{"mails.notifications.team_template_path", s.Mails.Notifications.TeamTemplatePath, dirs},
		{"mails.notifications.user_template_path", s.Mails.Notifications.UserTemplatePath, dirs},
		{"mails.notifications.html_email_path", s.Mails.Notifications.HTMLEmailPath, dirs},
	}
}

// Validate checks required keys, allowed placeholder tokens and the report
// folder date format
func (s *Settings) Validate() error {
	var errs []error
	if err := validation.Struct(s, s.source, ""); err != nil {
		errs = append(errs, err)
	}
	for _, tmpl := range s.templates() {
		if err := placeholder.Check(tmpl.value, tmpl.allowed...); err != nil {
			var ref *configerror.ReferenceError
			if errors.As(err, &ref) {
				ref.Source = s.source
				ref.Location = tmpl.key
			}
			errs = append(errs, err)
		}
	}
	if err := dateutils.ValidateStrftime(s.Reports.NetSubdirFormat); err != nil {
		errs = append(errs, &configerror.ValidationError{
			Source: s.source,
			Field:  "reports.net_subdir_format",
			Reason: err.Error(),
		})
	}
	return errors.Join(errs...)
}

// Source returns the file the settings were loaded from
func (s *Settings) Source() string {
	return s.source
}

// AppDir returns the application root bound with WithAppDir
func (s *Settings) AppDir() string {
	return s.appDir
}

// WithAppDir returns a copy of the settings bound to an application root,
// which replaces $appdir$ in paths
func (s *Settings) WithAppDir(dir string) *Settings {
	c := *s
	c.Clearing.Holidays = append([]dateutils.Holiday(nil), s.Clearing.Holidays...)
	c.appDir = dir
	return &c
}

func (s *Settings) values(scope Scope) placeholder.Values {
	values := placeholder.Values{}
	if s.appDir != "" {
		values[placeholder.AppDir] = s.appDir
	}
	if scope.Entity != "" {
		values[placeholder.Entity] = scope.Entity
	}
	if scope.CompanyCode != "" {
		values[placeholder.CompCode] = scope.CompanyCode
	}
	return values
}

// Expand substitutes the application root and the scope into a template
func (s *Settings) Expand(tmpl string, scope Scope) (string, error) {
	return placeholder.Expand(tmpl, s.values(scope))
}

// ExpandPath is Expand followed by path normalisation
func (s *Settings) ExpandPath(tmpl string, scope Scope) (string, error) {
	return placeholder.ExpandPath(tmpl, s.values(scope))
}

// RulesPath returns the resolved location of the clearing rules file
func (s *Settings) RulesPath() (string, error) {
	return s.ExpandPath(s.Clearing.RulesPath, Scope{})
}

// RecoveryPath returns the recovery file, relative names being placed in
// the application root
func (s *Settings) RecoveryPath() (string, error) {
	name, err := s.ExpandPath(s.Recovery.RecoveryName, Scope{})
	if err != nil || filepath.IsAbs(name) {
		return name, err
	}
	if s.appDir == "" {
		return "", &configerror.ReferenceError{
			Source:   s.source,
			Location: "recovery.recovery_name",
			Kind:     configerror.KindPlaceholder,
			Name:     placeholder.AppDir,
		}
	}
	return joinPath(placeholder.NormalizePath(s.appDir), name), nil
}

// joinPath is filepath.Join keeping a UNC prefix (//server/share) intact
func joinPath(dir, name string) string {
	joined := filepath.Join(dir, name)
	if isUNC(dir) && !isUNC(joined) {
		joined = string(filepath.Separator) + joined
	}
	return joined
}

func isUNC(p string) bool {
	sep := string(filepath.Separator)
	return strings.HasPrefix(p, sep+sep)
}

// DataFile joins a directory and a file name template, both expanded
func (s *Settings) DataFile(dir, nameTemplate string, scope Scope) (string, error) {
	d, err := s.ExpandPath(dir, scope)
	if err != nil {
		return "", err
	}
	name, err := s.Expand(nameTemplate, scope)
	if err != nil {
		return "", err
	}
	return joinPath(d, name), nil
}

// EntityFiles resolves every data file and the report of one entity.
// Templates left empty in the settings are skipped.
func (s *Settings) EntityFiles(scope Scope) ([]NamedPath, error) {
	d := s.Data
	files := []struct{ key, dir, name string }{
		{"fbl5n_data_export", d.FBL5NExportDir, d.FBL5NDataExportName},
		{"fbl5n_data_binary", d.DumpDir, d.FBL5NDataBinaryName},
		{"dms_data_export", d.DMSExportDir, d.DMSDataExportName},
		{"dms_data_binary", d.DumpDir, d.DMSDataBinaryName},
		{"customer_data", d.DataDir, d.CustomerDataName},
		{"consolidated_data", d.DumpDir, d.ConsolidatedDataName},
		{"clearing_input", d.DumpDir, d.ClearingInputName},
		{"matched_data", d.DumpDir, d.MatchedDataName},
		{"analyzed_data", d.DumpDir, d.AnalyzedDataName},
		{"clearing_output", d.DumpDir, d.ClearingOutputName},
		{"dms_closing_output", d.DumpDir, d.DMSClosingOutputName},
		{"qm_closing_output", d.DumpDir, d.QMClosingOutputName},
		{"report", s.Reports.LocalDir, s.Reports.Name},
	}

	out := make([]NamedPath, 0, len(files))
	for _, f := range files {
		if f.name == "" {
			continue
		}
		p, err := s.DataFile(f.dir, f.name, scope)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve %s: %w", f.key, err)
		}
		out = append(out, NamedPath{Key: f.key, Path: p})
	}
	return out, nil
}

// Directories resolves the configured working directories
func (s *Settings) Directories() ([]NamedPath, error) {
	dirs := []struct{ key, value string }{
		{"data_dir", s.Data.DataDir},
		{"dump_dir", s.Data.DumpDir},
		{"temp_dir", s.Data.TempDir},
		{"fbl5n_export_dir", s.Data.FBL5NExportDir},
		{"dms_export_dir", s.Data.DMSExportDir},
		{"reports_local_dir", s.Reports.LocalDir},
	}
	out := make([]NamedPath, 0, len(dirs))
	for _, d := range dirs {
		if d.value == "" {
			continue
		}
		p, err := s.ExpandPath(d.value, Scope{})
		if err != nil {
			return nil, err
		}
		out = append(out, NamedPath{Key: d.key, Path: p})
	}
	return out, nil
}

// ReportName returns the report file name of an entity
func (s *Settings) ReportName(scope Scope) (string, error) {
	return s.Expand(s.Reports.Name, scope)
}

// NetSubdir returns the dated folder reports are published into
func (s *Settings) NetSubdir(date time.Time) string {
	return dateutils.Strftime(date, s.Reports.NetSubdirFormat)
}

// NetReportDir returns the network folder holding the reports of a date
func (s *Settings) NetReportDir(date time.Time) (string, error) {
	dir, err := s.ExpandPath(s.Reports.NetDir, Scope{})
	if err != nil {
		return "", err
	}
	return joinPath(dir, s.NetSubdir(date)), nil
}

// Subject returns the notification subject for a date
func (s *Settings) Subject(date time.Time) (string, error) {
	return placeholder.Expand(s.Mails.Notifications.Subject, placeholder.Values{
		placeholder.Date: dateutils.Strftime(date, SubjectDateFormat),
	})
}

// NotificationTemplatePath returns the team or the single-user template
func (s *Settings) NotificationTemplatePath(team bool) (string, error) {
	if team {
		return s.ExpandPath(s.Mails.Notifications.TeamTemplatePath, Scope{})
	}
	return s.ExpandPath(s.Mails.Notifications.UserTemplatePath, Scope{})
}

// RenderNotification fills a notification template with the report folder
// and the summary table rows
func RenderNotification(body, reportPath, rows string) (string, error) {
	return placeholder.Expand(body, placeholder.Values{
		placeholder.ReportPath: reportPath,
		placeholder.TblRows:    rows,
	})
}

// SAPSystemName returns the SAP logon entry of the configured system
func (s *Settings) SAPSystemName() string {
	return sapSystems[s.SAP.System]
}

// ClearingDate returns the posting date for a run on today
func (s *Settings) ClearingDate(today time.Time) time.Time {
	return dateutils.ClearingDate(today, s.Clearing.Holidays)
}
