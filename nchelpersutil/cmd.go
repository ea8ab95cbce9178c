/*
Copyright © 2018 the nchelpers authors.
This file is part of nchelpers.

nchelpers is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

nchelpers is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with nchelpers.  If not, see <http://www.gnu.org/licenses/>.
*/

// Package nchelpersutil holds the command-line interface to the
// nchelpers library.
package nchelpersutil

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/lnashier/viper"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cast"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/pacificclimate/nchelpers"
)

// Version is the version of this release of nchelpers.
const Version = "1.0.0"

// Cfg holds configuration information.
var Cfg *viper.Viper

var options []struct {
	name, usage, shorthand string
	defaultVal             interface{}
	flagsets               []*pflag.FlagSet
}

func init() {
	options = []struct {
		name, usage, shorthand string
		defaultVal             interface{}
		flagsets               []*pflag.FlagSet
	}{
		{
			name: "config",
			usage: `
              config specifies the configuration file location.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "strict",
			usage: `
              strict requires metadata to adhere to the CF and PCIC metadata
              standards. If false, heuristics are applied when an attempt to
              interpret metadata according to the standards fails.`,
			shorthand:  "s",
			defaultVal: false,
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "loglevel",
			usage: `
              loglevel sets the amount of logging: one of debug, info,
              warning, or error. Heuristic candidate rejections are logged
              at debug level.`,
			defaultVal: "warning",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "variable",
			usage: `
              variable specifies the name of the variable of interest within
              the file. For attr, an empty value means a global attribute.`,
			shorthand:  "v",
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{attrCmd.Flags(), chunksCmd.Flags()},
		},
		{
			name: "prefixes",
			usage: `
              prefixes specifies the process-role prefix chain to qualify the
              attribute name with, most recent processing step first. Valid
              roles are GCM, downscaling, climdex, and hydromodel.`,
			defaultVal: []string{},
			flagsets:   []*pflag.FlagSet{attrCmd.Flags()},
		},
		{
			name: "maxbytes",
			usage: `
              maxbytes specifies the maximum number of bytes of variable
              values to hold in memory per chunk.`,
			defaultVal: 1 << 20,
			flagsets:   []*pflag.FlagSet{chunksCmd.Flags()},
		},
		{
			name: "dims",
			usage: `
              dims specifies the ordered subset of the variable's dimensions
              to chunk over, outermost first. Dimensions not listed are
              loaded in full in every chunk. An empty list chunks over all
              dimensions.`,
			defaultVal: []string{},
			flagsets:   []*pflag.FlagSet{chunksCmd.Flags()},
		},
	}

	Cfg = viper.New()

	// Set the prefix for configuration environment variables.
	Cfg.SetEnvPrefix("NCHELPERS")

	for _, option := range options {
		for i, set := range option.flagsets {
			if i != 0 { // We don't want to create the same flag twice.
				set.AddFlag(option.flagsets[0].Lookup(option.name))
				continue
			}
			switch option.defaultVal.(type) {
			case string:
				if option.shorthand == "" {
					set.String(option.name, option.defaultVal.(string), option.usage)
				} else {
					set.StringP(option.name, option.shorthand, option.defaultVal.(string), option.usage)
				}
			case []string:
				if option.shorthand == "" {
					set.StringSlice(option.name, option.defaultVal.([]string), option.usage)
				} else {
					set.StringSliceP(option.name, option.shorthand, option.defaultVal.([]string), option.usage)
				}
			case bool:
				if option.shorthand == "" {
					set.Bool(option.name, option.defaultVal.(bool), option.usage)
				} else {
					set.BoolP(option.name, option.shorthand, option.defaultVal.(bool), option.usage)
				}
			case int:
				if option.shorthand == "" {
					set.Int(option.name, option.defaultVal.(int), option.usage)
				} else {
					set.IntP(option.name, option.shorthand, option.defaultVal.(int), option.usage)
				}
			default:
				panic(fmt.Errorf("nchelpers: invalid buildtime configuration type: %T", option.defaultVal))
			}
			Cfg.BindPFlag(option.name, set.Lookup(option.name))
		}
	}
}

func init() {
	// Link the commands together.
	Root.AddCommand(versionCmd)
	Root.AddCommand(classifyCmd)
	Root.AddCommand(attrCmd)
	Root.AddCommand(chunksCmd)
}

// setConfig finds and reads in the configuration file, if there is one,
// and configures logging.
func setConfig() error {
	if cfgpath := Cfg.GetString("config"); cfgpath != "" {
		Cfg.SetConfigFile(cfgpath)
		if err := Cfg.ReadInConfig(); err != nil {
			return fmt.Errorf("nchelpers: problem reading configuration file: %v", err)
		}
	}
	level, err := logrus.ParseLevel(Cfg.GetString("loglevel"))
	if err != nil {
		return fmt.Errorf("nchelpers: %v", err)
	}
	logrus.SetLevel(level)
	logrus.SetFormatter(&logrus.TextFormatter{ForceColors: true})
	return nil
}

// Root is the main command.
var Root = &cobra.Command{
	Use:   "nchelpers",
	Short: "Classify CF metadata in NetCDF files.",
	Long: `nchelpers interprets the metadata embedded in CF (climate and forecast)
NetCDF files: what kind of product the file holds, how it was processed,
its time resolution and sampling geometry, and the values of attributes
qualified by process-role prefixes. Use the subcommands specified below to
access this functionality.

Configuration can be changed by using a configuration file (and providing the
path to the file using the --config flag), by using command-line arguments,
or by setting environment variables in the format 'NCHELPERS_var' where 'var'
is the name of the variable to be set.`,
	DisableAutoGenTag: true,
	PersistentPreRunE: func(*cobra.Command, []string) error { return setConfig() },
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  "version prints the version number of this version of nchelpers.",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("nchelpers v%s\n", Version)
	},
}

var classifyCmd = &cobra.Command{
	Use:   "classify [file]",
	Short: "Classify a NetCDF file by its metadata.",
	Long: `classify derives every classification property of the given file
and prints them as JSON: sampling geometry, time resolution, origin,
process chain, and temporal structure.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, closer, err := openDataset(args[0])
		if err != nil {
			return err
		}
		defer closer.Close()
		c, err := d.Classify()
		if err != nil {
			return err
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(c)
	},
}

var attrCmd = &cobra.Command{
	Use:   "attr [file] [attribute]",
	Short: "Resolve a possibly prefix-qualified attribute.",
	Long: `attr prints the value of the named attribute of the given file,
qualified by the process-role prefix chain given with --prefixes, or
automatically qualified by the file's GCM chain when the single prefix
'auto' is given.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, closer, err := openDataset(args[0])
		if err != nil {
			return err
		}
		defer closer.Close()

		prefixes, err := cast.ToStringSliceE(Cfg.Get("prefixes"))
		if err != nil {
			return fmt.Errorf("nchelpers: problem reading prefixes: %v", err)
		}

		var val interface{}
		switch {
		case len(prefixes) == 1 && prefixes[0] == "auto":
			val, err = d.GCMAttr(args[1])
		case Cfg.GetString("variable") != "":
			val, err = d.VarAttr(Cfg.GetString("variable"), args[1])
		default:
			chain, err2 := parseChain(prefixes)
			if err2 != nil {
				return err2
			}
			val, err = d.Attr(args[1], chain...)
		}
		if err != nil {
			return err
		}
		fmt.Println(val)
		return nil
	},
}

var chunksCmd = &cobra.Command{
	Use:   "chunks [file]",
	Short: "Iterate over a variable in memory-bounded chunks.",
	Long: `chunks reads the variable given with --variable in chunks of at
most --maxbytes bytes each and prints the index range and value range of
every chunk. It demonstrates and checks the partition that library users
iterate with.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		varName := Cfg.GetString("variable")
		if varName == "" {
			return fmt.Errorf("nchelpers: chunks requires --variable")
		}
		maxBytes, err := cast.ToIntE(Cfg.Get("maxbytes"))
		if err != nil {
			return fmt.Errorf("nchelpers: problem reading maxbytes: %v", err)
		}
		dims, err := cast.ToStringSliceE(Cfg.Get("dims"))
		if err != nil {
			return fmt.Errorf("nchelpers: problem reading dims: %v", err)
		}

		d, closer, err := openDataset(args[0])
		if err != nil {
			return err
		}
		defer closer.Close()

		next, err := d.Chunks(varName, maxBytes, dims...)
		if err != nil {
			return err
		}
		for {
			chunk, err := next()
			if err == io.EOF {
				break
			}
			if err != nil {
				return err
			}
			lo, hi := valueRange(chunk.Data.Elements)
			fmt.Printf("%v:%v min %g max %g\n", chunk.Begin, chunk.End, lo, hi)
		}
		return nil
	},
}

// parseChain converts role tokens from the command line to a prefix
// chain.
func parseChain(tokens []string) (nchelpers.PrefixChain, error) {
	chain := make(nchelpers.PrefixChain, len(tokens))
	for i, tok := range tokens {
		role, err := nchelpers.ParseRole(tok)
		if err != nil {
			return nil, err
		}
		chain[i] = role
	}
	return chain, nil
}
