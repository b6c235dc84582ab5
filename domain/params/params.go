// Package params holds the fixed parameter ordering of the LHC sample.
package params

// RawWidth is the number of parameter columns in the raw LHC sample.
const RawWidth = 55

// Names lists the raw LHC columns in file order.
var Names = [RawWidth]string{
	"bl_nuc", "ait_width", "cloud_ph", "carb_ff_ems_eur", "carb_ff_ems_nam", "carb_ff_ems_chi", "carb_ff_ems_asi",
	"carb_ff_ems_mar", "carb_ff_ems_r", "carb_bb_ems_sam", "carb_bb_ems_naf", "carb_bb_ems_saf", "carb_bb_ems_bnh",
	"carb_bb_ems_rnh", "carb_bb_ems_rsh", "carb_res_ems_chi", "carb_res_ems_asi", "carb_res_ems_afr", "carb_res_ems_lat",
	"carb_res_ems_r", "carb_ff_diam", "carb_bb_diam", "carb_res_diam", "prim_so4_diam", "sea_spray", "anth_so2_chi",
	"anth_so2_asi", "anth_so2_eur", "anth_so2_nam", "anth_so2_r", "volc_so2", "bvoc_soa", "dms", "prim_moc", "dry_dep_ait",
	"dry_dep_acc", "dry_dep_so2", "kappa_oc", "sig_w", "rain_frac", "cloud_ice_thresh", "conv_plume_scav", "scav_diam",
	"bc_ri", "oxidants_oh", "oxidants_o3", "bparam", "two_d_fsd_factor", "c_r_correl", "autoconv_exp_lwp", "autoconv_exp_nd",
	"dbsdtbs_turb_0", "ai", "m_ci", "a_ent_1_rp",
}

// SubsetIndex selects the 37 modelled parameters from the raw columns.
// The carbonaceous emission scalings and scav_diam are excluded.
var SubsetIndex = [...]int{
	0, 1, 2, 20, 21, 22, 23, 24, 25, 26, 27, 28, 29, 30, 31, 32,
	33, 34, 35, 36, 37, 38, 39, 40, 41, 43, 44, 45, 46, 47, 48,
	49, 50, 51, 52, 53, 54,
}

// Count is the number of modelled parameters.
const Count = len(SubsetIndex)

// SubsetNames returns the names of the modelled parameters in subset order.
func SubsetNames() []string {
	names := make([]string, Count)
	for i, idx := range SubsetIndex {
		names[i] = Names[idx]
	}
	return names
}

// Select copies the subset columns of a raw row into dst, which must hold Count values.
func Select(dst, raw []float64) {
	for i, idx := range SubsetIndex {
		dst[i] = raw[idx]
	}
}
